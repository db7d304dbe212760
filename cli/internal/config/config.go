package config

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/migforge/migforge/migrate/history"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	MigrationsDir string
	TypesOut      string
	SnapshotPath  string
	OutDir        string
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	// Find home directory
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// Set config file paths
	viper.SetConfigName(".migforge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "migforge"))

	// Set environment variable prefix
	viper.SetEnvPrefix("MIGFORGE")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("migrations_dir", "migrations")
	viper.SetDefault("types_out", filepath.Join("types", "schema.d.ts"))
	viper.SetDefault("snapshot_path", history.DefaultSnapshotPath)
	viper.SetDefault("out_dir", "generated")

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			// Don't fail if .env can't be loaded
		}
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			// Don't fail if .env.local can't be loaded
		}
	}

	cfg := &Config{
		MigrationsDir: viper.GetString("migrations_dir"),
		TypesOut:      viper.GetString("types_out"),
		SnapshotPath:  viper.GetString("snapshot_path"),
		OutDir:        viper.GetString("out_dir"),
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a project-local .migforge.yaml
func SaveConfig(cfg *Config) error {
	viper.Set("migrations_dir", cfg.MigrationsDir)
	viper.Set("types_out", cfg.TypesOut)
	viper.Set("snapshot_path", cfg.SnapshotPath)
	viper.Set("out_dir", cfg.OutDir)

	return viper.WriteConfigAs(".migforge.yaml")
}
