package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	KeyDB       = "db"
	KeyAddr     = "addr"
	KeyLogLevel = "log.level"

	envPrefix = "SRL"
)

// Config holds the settings shared by every srl command.
type Config struct {
	DBPath   string
	Addr     string
	LogLevel string
}

// Load resolves configuration from, in increasing precedence: defaults,
// configFile (if set), SRL_* environment variables, and flags already bound
// on v.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault(KeyDB, "srl_archive.db")
	v.SetDefault(KeyAddr, "localhost:50061")
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		DBPath:   v.GetString(KeyDB),
		Addr:     v.GetString(KeyAddr),
		LogLevel: v.GetString(KeyLogLevel),
	}
	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("config %s must not be empty", KeyDB)
	}
	return cfg, nil
}
