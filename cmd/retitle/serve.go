package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shayanh/retitle/web"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server",
	Long: `Start the HTTP server.

The server provides:
  - POST /api/files      - upload PDFs (multipart field "files")
  - GET  /api/files/{id} - download a PDF under its proposed name
  - /healthz             - health check
  - /dropbox/webhook     - Dropbox webhook, when Dropbox is configured

Examples:
  retitle serve
  retitle serve --addr 127.0.0.1:3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cmd.Flags().Changed("addr") {
			config.Web.Addr = serveAddr
		}

		proc, err := newProcessor()
		if err != nil {
			return err
		}
		srv := web.NewServer(proc, web.NewStore(config.Web.DownloadTTL), config.Web.MaxUploadBytes, log)
		if config.Dropbox.Enabled() {
			ds, closeState := newDropboxSynchronizer(proc)
			defer closeState()
			srv.MountWebhook("/dropbox/webhook", newDropboxWebhook(ds))
		}

		httpSrv := &http.Server{
			Addr:              config.Web.Addr,
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.WithField("Addr", config.Web.Addr).Info("Server started.")
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return errors.Wrap(err, "serve failed")
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("Shutting down.")
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")

	rootCmd.AddCommand(serveCmd)
}
