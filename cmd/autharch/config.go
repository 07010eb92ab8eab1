// Config loading for the autharch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/gpp-archive/autharch/internal/importer"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyLanguage          = "language"
	cfgKeyScript            = "script"
	cfgKeyPublicationStatus = "publication_status"
	cfgKeyMaintenanceStatus = "maintenance_status"
	cfgKeyRepositoryCode    = "repository_code"
	cfgKeyRepositories      = "default_repositories"
	cfgKeyActor             = "actor"
)

// loadConfig reads config.yaml from the config directory using Viper and
// maps it onto the import defaults. A missing config.yaml is not an error;
// the built-in defaults apply.
func loadConfig() (importer.Config, error) {
	defaults := importer.DefaultConfig()

	configDir, err := resolveConfigDir()
	if err != nil {
		return defaults, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyLanguage, defaults.Language)
	v.SetDefault(cfgKeyScript, defaults.Script)
	v.SetDefault(cfgKeyPublicationStatus, defaults.PublicationStatus)
	v.SetDefault(cfgKeyMaintenanceStatus, defaults.MaintenanceStatus)
	v.SetDefault(cfgKeyRepositoryCode, defaults.RepositoryCode)
	v.SetDefault(cfgKeyRepositories, defaults.DefaultRepositories)
	v.SetDefault(cfgKeyActor, defaults.Actor)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return defaults, fmt.Errorf("read config: %w", err)
		}
	}

	return importer.Config{
		Language:            v.GetString(cfgKeyLanguage),
		Script:              v.GetString(cfgKeyScript),
		PublicationStatus:   v.GetString(cfgKeyPublicationStatus),
		MaintenanceStatus:   v.GetString(cfgKeyMaintenanceStatus),
		RepositoryCode:      v.GetInt(cfgKeyRepositoryCode),
		DefaultRepositories: v.GetStringSlice(cfgKeyRepositories),
		Actor:               v.GetString(cfgKeyActor),
	}, nil
}

// resolveConfigDir returns the configuration directory:
// --config-dir flag > AUTHARCH_CONFIG_DIR env > $HOME/.autharch.
func resolveConfigDir() (string, error) {
	if flagConfigDir != "" {
		return flagConfigDir, nil
	}
	if dir := os.Getenv("AUTHARCH_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".autharch"), nil
}
