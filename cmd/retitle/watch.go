package main

import (
	"github.com/spf13/cobra"

	"github.com/shayanh/retitle/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch IN OUT",
	Short: "Rename PDFs dropped into a folder",
	Long: `Watch IN and write a renamed copy of every PDF that appears in it to OUT.

A file is handled once it has not changed for the settle delay
(config key watch.settle, default 500ms). Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		proc, err := newProcessor()
		if err != nil {
			return err
		}
		w, err := watch.New(args[0], args[1], proc, log)
		if err != nil {
			return err
		}
		w.Settle = config.Watch.Settle
		return w.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
