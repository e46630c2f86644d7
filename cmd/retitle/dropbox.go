package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shayanh/retitle/cloudsync"
	"github.com/shayanh/retitle/pipeline"
)

var dropboxFolder string

var dropboxCmd = &cobra.Command{
	Use:   "dropbox",
	Short: "Retitle the PDFs of a Dropbox folder",
	Long: `Sync a Dropbox folder once and propose titles for its new PDFs.

Requires dropbox.token and a reachable Redis, which remembers the folder
cursor and the files already handled. When dropbox.outFolder is set, a
renamed copy is stored there. When notion.token and notion.databaseID are
set, each renamed file is recorded in that Notion database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.Dropbox.Enabled() {
			return errors.New("dropbox.token is not configured")
		}
		folder := config.Dropbox.RootFolder
		if cmd.Flags().Changed("folder") {
			folder = dropboxFolder
		}

		proc, err := newProcessor()
		if err != nil {
			return err
		}
		ds, closeState := newDropboxSynchronizer(proc)
		defer closeState()

		results, err := ds.SyncFolder(cmd.Context(), folder)
		if outErr := writeOutput(cmd.OutOrStdout(), results); outErr != nil {
			return outErr
		}
		return err
	},
}

func init() {
	dropboxCmd.Flags().StringVar(&dropboxFolder, "folder", "", "Dropbox folder (default: dropbox.rootFolder)")

	rootCmd.AddCommand(dropboxCmd)
}

func newDropboxSynchronizer(proc *pipeline.Processor) (*cloudsync.DropboxSynchronizer, func()) {
	rdb := newRedisClient()
	var catalog cloudsync.Cataloger
	if config.Notion.Enabled() {
		catalog = cloudsync.NewNotionHandler(config.Notion.Token, config.Notion.DatabaseID)
	}
	dh := cloudsync.NewDropboxHandler(config.Dropbox.Token)
	ds := cloudsync.NewDropboxSynchronizer(dh, proc, cloudsync.NewRedisState(rdb), catalog, config.Dropbox.OutFolder, log)
	return ds, func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("cannot close redis client")
		}
	}
}

func newDropboxWebhook(ds *cloudsync.DropboxSynchronizer) *cloudsync.DropboxWebhook {
	return cloudsync.NewDropboxWebhook(config.Dropbox.RootFolder, config.Dropbox.AppSecret, ds, log)
}
