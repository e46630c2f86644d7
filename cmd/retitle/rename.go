package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shayanh/retitle/pipeline"
)

var renameOut string

var renameCmd = &cobra.Command{
	Use:   "rename FILE...",
	Short: "Propose titles for the given files",
	Long: `Propose a title based file name for each file and print the results.

With --out, each successfully titled PDF is also copied into that
directory under its new name. Originals are never modified.

Examples:
  retitle rename paper.pdf scan.pdf
  retitle rename --out renamed/ downloads/*.pdf
  retitle rename -o json report.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		proc, err := newProcessor()
		if err != nil {
			return err
		}

		files := make([]pipeline.File, len(args))
		for i, arg := range args {
			files[i] = pipeline.LocalFile{Path: arg}
		}
		results := proc.Process(ctx, files, func(index int, name string, fraction float64) {
			log.WithFields(logrus.Fields{
				"Index":    index,
				"Name":     name,
				"Progress": fraction,
			}).Debug("Progress")
		})

		if renameOut != "" {
			for i, res := range results {
				if res.Status != pipeline.StatusSuccess {
					continue
				}
				path, err := pipeline.CopyRenamed(ctx, files[i], renameOut, res)
				if err != nil {
					log.WithError(err).Error("cannot write renamed copy")
					continue
				}
				log.WithField("Path", path).Info("Renamed copy created.")
			}
		}

		if err := writeOutput(cmd.OutOrStdout(), results); err != nil {
			return err
		}
		return pipeline.Errors(results)
	},
}

func init() {
	renameCmd.Flags().StringVar(&renameOut, "out", "", "directory receiving renamed copies")

	rootCmd.AddCommand(renameCmd)
}
