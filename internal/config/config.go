package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Uploads
		Circulation
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
		ReleaseMode              bool // omits the stack field from error envelopes
	}

	Database struct {
		Path string
	}

	Auth struct {
		JWTSecret  string
		JWTExpiry  time.Duration
		BcryptCost int
	}

	Uploads struct {
		Dir          string // root of the upload areas
		MaxBookSize  int64  // bytes
		MaxImageSize int64  // bytes
	}

	Circulation struct {
		LoanDays      int
		SweepEnabled  bool
		SweepSchedule string // cron format
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("release_mode", false)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_expiry", "720h") // 30 days
	v.SetDefault("bcrypt_cost", 10)

	// Upload defaults
	v.SetDefault("uploads_dir", DefaultUploadsDir)
	v.SetDefault("max_book_size", MaxBookFileSize)
	v.SetDefault("max_image_size", MaxImageFileSize)

	// Circulation defaults
	v.SetDefault("loan_days", 14)
	v.SetDefault("overdue_sweep_enabled", true)
	v.SetDefault("overdue_sweep_schedule", "0 * * * *") // hourly at :00

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "2m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			ReleaseMode:              v.GetBool("RELEASE_MODE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:  v.GetString("JWT_SECRET"),
			JWTExpiry:  v.GetDuration("JWT_EXPIRY"),
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Uploads: Uploads{
			Dir:          v.GetString("UPLOADS_DIR"),
			MaxBookSize:  v.GetInt64("MAX_BOOK_SIZE"),
			MaxImageSize: v.GetInt64("MAX_IMAGE_SIZE"),
		},
		Circulation: Circulation{
			LoanDays:      v.GetInt("LOAN_DAYS"),
			SweepEnabled:  v.GetBool("OVERDUE_SWEEP_ENABLED"),
			SweepSchedule: v.GetString("OVERDUE_SWEEP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
