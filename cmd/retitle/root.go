package main

import (
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shayanh/retitle"
	"github.com/shayanh/retitle/extract"
	"github.com/shayanh/retitle/pipeline"
)

var (
	cfgFile      string
	parserName   string
	logLevel     string
	outputFormat string

	config retitle.RootConfig
	log    = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "retitle",
	Short: "Name PDFs after the title on their first page",
	Long: `Retitle reads the first page of each PDF, takes the large text at the top
as its title and proposes "<title>.pdf" as the file name.

Files can be given on the command line, dropped into a watched folder,
uploaded over HTTP or picked up from a Dropbox folder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = retitle.ReadConfig(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("parser") {
			config.Parser = parserName
		}
		if cmd.Flags().Changed("log-level") {
			config.Log.Level = logLevel
		}
		level, err := logrus.ParseLevel(config.Log.Level)
		if err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		log.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&parserName, "parser", extract.ParserPDFCPU, "PDF backend: pdfcpu or glyphs",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
}

func newProcessor() (*pipeline.Processor, error) {
	parser, err := extract.NewParser(config.Parser)
	if err != nil {
		return nil, err
	}
	return pipeline.New(parser, log), nil
}

func newRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
}
