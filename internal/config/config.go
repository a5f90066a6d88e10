// Package config loads bookscout settings from file, environment and
// defaults, in that order of increasing precedence for env overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings for the service and CLI.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	NDL    NDLConfig    `mapstructure:"ndl"`
	OpenBD OpenBDConfig `mapstructure:"openbd"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Page   PageConfig   `mapstructure:"page"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// NDLConfig controls the catalog search client.
type NDLConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	MaxRecords int           `mapstructure:"max_records"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheDir   string        `mapstructure:"cache_dir"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// OpenBDConfig controls the ISBN verification client.
type OpenBDConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig controls the book-selection model client.
type LLMConfig struct {
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// PageConfig controls web page text extraction.
type PageConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
}

// Load reads the config file at path (optional; "" searches the usual
// locations) and applies BOOKSCOUT_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("ndl.base_url", "https://ndlsearch.ndl.go.jp/api/sru")
	v.SetDefault("ndl.max_records", 10)
	v.SetDefault("ndl.timeout", 5*time.Second)
	v.SetDefault("ndl.cache_ttl", 24*time.Hour)
	v.SetDefault("openbd.base_url", "https://api.openbd.jp")
	v.SetDefault("openbd.timeout", 5*time.Second)
	v.SetDefault("page.timeout", 10*time.Second)
	v.SetDefault("page.max_chars", 20_000)

	v.SetEnvPrefix("BOOKSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("bookscout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/bookscout")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
