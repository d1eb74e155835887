// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Workspace struct {
		// Root of the console codebase that generated modules are written
		// into. The route manifest lives under it as well.
		Root string `mapstructure:"root"`
	} `mapstructure:"workspace"`
	Airtable struct {
		BaseURL string `mapstructure:"base_url"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"airtable"`
	Jobs struct {
		// How long terminal jobs are kept in the registry before eviction.
		RetentionHours int `mapstructure:"retention_hours"`
	} `mapstructure:"jobs"`
	Generator struct {
		// Semantic version stamped onto manifest entries; a newer generator
		// refreshes entries written by an older one.
		Version string `mapstructure:"version"`
	} `mapstructure:"generator"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with an "ECODESK_"
	// prefix. e.g., ECODESK_AIRTABLE_TOKEN overrides the `airtable.token` key.
	viper.SetEnvPrefix("ECODESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./ecodesk.db")
	viper.SetDefault("workspace.root", "./console")
	viper.SetDefault("airtable.base_url", "https://api.airtable.com")
	viper.SetDefault("airtable.token", "")
	viper.SetDefault("jobs.retention_hours", 24)
	viper.SetDefault("generator.version", "1.0.0")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
