package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/xavierca1/seller-console/internal/infra/prefstore"
)

const (
	cfgKeyAPIURL    = "api_url"
	cfgKeyAPIKey    = "api_key"
	cfgKeyPrefsPath = "prefs_path"
)

// loadConfig reads settings from the config file and the environment.
// Precedence: CONSOLE_* env vars, then the config file, then defaults.
// A missing config file is fine; everything has a default.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(cfgKeyAPIURL, "")
	v.SetDefault(cfgKeyAPIKey, "")
	v.SetDefault(cfgKeyPrefsPath, filepath.Join(configDir(), "prefs.db"))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
	}

	v.SetEnvPrefix("CONSOLE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		if os.IsNotExist(err) {
			return v, nil
		}
		return nil, fmt.Errorf("read %s: %w", v.ConfigFileUsed(), err)
	}
	return v, nil
}

// openPrefs opens the SQLite preference store, creating its directory on
// first run.
func openPrefs(path string) (prefstore.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return prefstore.New("sqlite", path)
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seller-console"
	}
	return filepath.Join(home, ".seller-console")
}
