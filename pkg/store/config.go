package store

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// DriverDiskv stores pages as files under the configured path.
	DriverDiskv = "diskv"
	// DriverSQLite stores pages in a sqlite database file at the configured path.
	DriverSQLite = "sqlite"
	// DriverPostgres stores pages in the postgres database named by the DSN.
	DriverPostgres = "postgres"
)

// Config selects and locates a storage backend.
type Config interface {
	Driver() string
	BasePath() string
	DSN() string
}

// FileConfig is the configuration read from .outliner.yaml and OUTLINER_*
// environment variables.
type FileConfig struct {
	DriverName string        `json:"driver"`
	Path       string        `json:"path"`
	Database   string        `json:"dsn"`
	User       string        `json:"user"`
	Debounce   time.Duration `json:"debounce"`
	LogLevel   string        `json:"logLevel"`
}

// LoadConfig walks the usual locations for a .outliner config file.
func LoadConfig() (*FileConfig, error) {
	viper.SetDefault("driver", DriverDiskv)
	viper.SetDefault("path", "~/.outliner.db")
	viper.SetDefault("user", "me")
	viper.SetDefault("debounce", "500ms")
	viper.SetDefault("log-level", "info")
	viper.SetConfigName(".outliner") // .yaml is implicit
	viper.SetEnvPrefix("OUTLINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("OUTLINER_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")
	viper.AddConfigPath("$HOME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("error reading config file: %v", err)
			return nil, err
		}
	}

	return &FileConfig{
		DriverName: viper.GetString("driver"),
		Path:       viper.GetString("path"),
		Database:   viper.GetString("dsn"),
		User:       viper.GetString("user"),
		Debounce:   viper.GetDuration("debounce"),
		LogLevel:   viper.GetString("log-level"),
	}, nil
}

// Driver implements Config.
func (f *FileConfig) Driver() string {
	if f.DriverName == "" {
		return DriverDiskv
	}
	return strings.ToLower(f.DriverName)
}

// BasePath implements Config.
func (f *FileConfig) BasePath() string {
	return f.Path
}

// DSN implements Config.
func (f *FileConfig) DSN() string {
	return f.Database
}

func expandPath(path string) (string, error) {
	return homedir.Expand(strings.TrimSpace(path))
}
