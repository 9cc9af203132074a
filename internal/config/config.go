package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Tasks
		Maintenance
		Products
		Purchases
		UI
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		LogLevel                 string
	}
	Database struct {
		Path        string
		Name        string
		BusyTimeout time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Maintenance struct {
		Enabled             bool
		Schedule            string // Cron format: "0 3 * * *" = daily at 03:00
		PruneOrphanProducts bool   // Delete products no line item references
	}
	Products struct {
		SearchLimit int
	}
	Purchases struct {
		RecentEstablishmentsLimit int
	}
	UI struct {
		DefaultTheme string // "light" or "dark", used until the user picks one
	}
)

// LoadDotEnv loads variables from the given files (".env" when none are
// given). Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		err := godotenv.Load(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		slog.Debug("loaded environment file", "file", file)
	}
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("log_level", "info")

	// Store defaults
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_name", DefaultConnectionName)
	v.SetDefault("database_busy_timeout", "5s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Maintenance defaults
	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("maintenance_prune_orphan_products", false)

	v.SetDefault("product_search_limit", 10)
	v.SetDefault("recent_establishments_limit", 10)
	v.SetDefault("default_theme", "light")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			LogLevel:                 v.GetString("LOG_LEVEL"),
		},
		Database: Database{
			Path:        v.GetString("DATABASE_PATH"),
			Name:        v.GetString("DATABASE_NAME"),
			BusyTimeout: v.GetDuration("DATABASE_BUSY_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:             v.GetBool("MAINTENANCE_ENABLED"),
			Schedule:            v.GetString("MAINTENANCE_SCHEDULE"),
			PruneOrphanProducts: v.GetBool("MAINTENANCE_PRUNE_ORPHAN_PRODUCTS"),
		},
		Products: Products{
			SearchLimit: v.GetInt("PRODUCT_SEARCH_LIMIT"),
		},
		Purchases: Purchases{
			RecentEstablishmentsLimit: v.GetInt("RECENT_ESTABLISHMENTS_LIMIT"),
		},
		UI: UI{
			DefaultTheme: v.GetString("DEFAULT_THEME"),
		},
	}
}
