package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Client ClientConfig `mapstructure:"client"`
	Log    LogConfig    `mapstructure:"log"`
	Live   LiveConfig   `mapstructure:"live"`
}

type ClientConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RateLimit     int           `mapstructure:"rate_limit"`
	AccessToken   string        `mapstructure:"access_token"`
	SessionCookie string        `mapstructure:"session_cookie"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type LiveConfig struct {
	URL               string        `mapstructure:"url"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	BackoffMin        time.Duration `mapstructure:"backoff_min"`
	BackoffMax        time.Duration `mapstructure:"backoff_max"`
}

// Load reads the config file at path, with STAKE_* environment
// variables taking precedence. envOnly skips the file entirely.
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("client.base_url", "https://stake.com")
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.rate_limit", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("live.url", "")
	v.SetDefault("live.heartbeat_interval", "20s")
	v.SetDefault("live.backoff_min", "1s")
	v.SetDefault("live.backoff_max", "30s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
