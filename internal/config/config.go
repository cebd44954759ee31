package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/go-tangra/go-tangra-hwreport/internal/codec"
	"github.com/go-tangra/go-tangra-hwreport/internal/report"
)

// Config holds the hwreport configuration.
type Config struct {
	Output               string `mapstructure:"output"`
	Format               string `mapstructure:"format"`
	IncludeUnknownFields bool   `mapstructure:"include_unknown_fields"`
	FieldNaming          string `mapstructure:"field_naming"`
	DropEmptyModules     bool   `mapstructure:"drop_empty_modules"`
	Sequential           bool   `mapstructure:"sequential"`
	DatabasePath         string `mapstructure:"database"`
	PostURL              string `mapstructure:"post_url"`
	PostSecret           string `mapstructure:"post_secret"`
	PersistRetries       int    `mapstructure:"persist_retries"`
	RetentionDays        int    `mapstructure:"retention_days"`
	LogLevel             string `mapstructure:"log_level"`
	LogFormat            string `mapstructure:"log_format"`
}

// Load reads configuration from file and environment. Without cfgFile,
// hwreport.yaml is looked up in the usual places and may be absent.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("hwreport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hwreport")
	}

	v.SetDefault("output", "-")
	v.SetDefault("format", codec.JSONName)
	v.SetDefault("include_unknown_fields", false)
	v.SetDefault("field_naming", string(report.NamingCanonical))
	v.SetDefault("drop_empty_modules", false)
	v.SetDefault("sequential", false)
	v.SetDefault("database", "")
	v.SetDefault("post_url", "")
	v.SetDefault("post_secret", "")
	v.SetDefault("persist_retries", 3)
	v.SetDefault("retention_days", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetEnvPrefix("HWREPORT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks option values and settles format and naming aliases on
// their canonical names. Errors name the offending key.
func (c *Config) Validate() error {
	cd, err := codec.Get(c.Format)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	c.Format = cd.Name()
	if c.Output == "" && c.DatabasePath == "" && c.PostURL == "" {
		return errors.New(`output: no report destination (set output, database or post_url; "-" writes to stdout)`)
	}
	naming, err := report.ParseNaming(c.FieldNaming)
	if err != nil {
		return fmt.Errorf("field_naming: %w", err)
	}
	c.FieldNaming = string(naming)
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unknown format %q (want console or json)", c.LogFormat)
	}
	if c.PersistRetries < 0 {
		return fmt.Errorf("persist_retries: must not be negative, got %d", c.PersistRetries)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days: must not be negative, got %d", c.RetentionDays)
	}
	if c.PostURL != "" && !strings.HasPrefix(c.PostURL, "http://") && !strings.HasPrefix(c.PostURL, "https://") {
		return fmt.Errorf("post_url: %q is not an http(s) URL", c.PostURL)
	}
	return nil
}

// ReportOptions returns the report generator options.
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		IncludeUnknownFields: c.IncludeUnknownFields,
		FieldNaming:          report.Naming(c.FieldNaming),
		DropEmptyModules:     c.DropEmptyModules,
	}
}
