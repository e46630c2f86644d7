// Package retitle holds the configuration shared by the retitle commands.
package retitle

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type RootConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Parser  string        `mapstructure:"parser"`
	Web     WebConfig     `mapstructure:"web"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Dropbox DropboxConfig `mapstructure:"dropbox"`
	Notion  NotionConfig  `mapstructure:"notion"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type WebConfig struct {
	Addr           string        `mapstructure:"addr"`
	DownloadTTL    time.Duration `mapstructure:"downloadTTL"`
	MaxUploadBytes int64         `mapstructure:"maxUploadBytes"`
}

type WatchConfig struct {
	Settle time.Duration `mapstructure:"settle"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DropboxConfig struct {
	Token      string `mapstructure:"token"`
	RootFolder string `mapstructure:"rootFolder"`
	OutFolder  string `mapstructure:"outFolder"`
	AppSecret  string `mapstructure:"appSecret"`
}

type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"databaseID"`
}

// Enabled reports whether Dropbox sync is configured.
func (c DropboxConfig) Enabled() bool { return c.Token != "" }

// Enabled reports whether the Notion catalog is configured.
func (c NotionConfig) Enabled() bool { return c.Token != "" && c.DatabaseID != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("config.log.level", "info")
	v.SetDefault("config.parser", "pdfcpu")
	v.SetDefault("config.web.addr", ":8080")
	v.SetDefault("config.web.downloadTTL", time.Hour)
	v.SetDefault("config.web.maxUploadBytes", int64(64<<20))
	v.SetDefault("config.watch.settle", 500*time.Millisecond)
	v.SetDefault("config.redis.addr", "localhost:6379")
	v.SetDefault("config.dropbox.rootFolder", "")
	v.SetDefault("config.dropbox.outFolder", "")
	v.SetDefault("config.dropbox.token", "")
	v.SetDefault("config.dropbox.appSecret", "")
	v.SetDefault("config.notion.token", "")
	v.SetDefault("config.notion.databaseID", "")
}

// ReadConfig loads config.yaml from the working directory or ./config, or
// from cfgFile when set. A missing file leaves the defaults in place.
// Environment variables such as RETITLE_WEB_ADDR override file values.
func ReadConfig(cfgFile string) (RootConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RETITLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("CONFIG.", "", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return RootConfig{}, errors.Wrap(err, "config ReadConfig failed")
		}
	}

	// Unmarshal walks every known key, so environment overrides of nested
	// keys are seen; UnmarshalKey("config") would only read the file's map.
	var file struct {
		Config RootConfig `mapstructure:"config"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return RootConfig{}, errors.Wrap(err, "config ReadConfig failed")
	}
	return file.Config, nil
}
