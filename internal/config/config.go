package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Borrowing
		Payments
		Auth
		Tasks
		Scheduler
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}

	// Borrowing holds the lending policy knobs consumed by the borrow ledger.
	Borrowing struct {
		MinLoanDays     int     // shortest allowed borrowing span
		MaxLoanDays     int     // longest allowed span, also the extension ceiling
		DefaultLoanDays int     // applied when no due date is given
		FinePerDay      float64 // currency units charged per day late
		PupilLimit      int     // concurrent open borrows per category
		StudentLimit    int
		AdultLimit      int
	}

	// Payments holds installment policy for the payment ledger.
	Payments struct {
		AmountTolerance float64 // currency-rounding slack when matching installment sums
	}

	Auth struct {
		SessionLifetime  time.Duration
		BcryptCost       int
		SecureCookies    bool
		MaxLoginAttempts int
		LockoutDuration  time.Duration
		TokenFilePath    string // local file persisting the opaque session token
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Scheduler struct {
		Enabled         bool
		OverdueSchedule string // cron format, e.g. "30 6 * * *"
		SessionSchedule string
	}

	// Audit controls the on-disk trail of staff write operations.
	Audit struct {
		Enabled bool
		Dir     string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Lending policy defaults
	v.SetDefault("borrow_min_loan_days", 1)
	v.SetDefault("borrow_max_loan_days", 30)
	v.SetDefault("borrow_default_loan_days", 14)
	v.SetDefault("borrow_fine_per_day", 5.0)
	v.SetDefault("borrow_limit_pupil", 3)
	v.SetDefault("borrow_limit_student", 5)
	v.SetDefault("borrow_limit_adult", 7)

	v.SetDefault("payment_amount_tolerance", 0.01)

	// Auth defaults
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", false) // local deployment without HTTPS
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "30m")
	v.SetDefault("auth_token_file", DefaultTokenFilePath)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Maintenance schedule defaults
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("scheduler_overdue_schedule", "30 6 * * *") // daily, 06:30
	v.SetDefault("scheduler_session_schedule", "0 * * * *")  // hourly

	// Audit trail defaults
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_dir", DefaultAuditDir)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Borrowing: Borrowing{
			MinLoanDays:     v.GetInt("BORROW_MIN_LOAN_DAYS"),
			MaxLoanDays:     v.GetInt("BORROW_MAX_LOAN_DAYS"),
			DefaultLoanDays: v.GetInt("BORROW_DEFAULT_LOAN_DAYS"),
			FinePerDay:      v.GetFloat64("BORROW_FINE_PER_DAY"),
			PupilLimit:      v.GetInt("BORROW_LIMIT_PUPIL"),
			StudentLimit:    v.GetInt("BORROW_LIMIT_STUDENT"),
			AdultLimit:      v.GetInt("BORROW_LIMIT_ADULT"),
		},
		Payments: Payments{
			AmountTolerance: v.GetFloat64("PAYMENT_AMOUNT_TOLERANCE"),
		},
		Auth: Auth{
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
			TokenFilePath:    v.GetString("AUTH_TOKEN_FILE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			Enabled:         v.GetBool("SCHEDULER_ENABLED"),
			OverdueSchedule: v.GetString("SCHEDULER_OVERDUE_SCHEDULE"),
			SessionSchedule: v.GetString("SCHEDULER_SESSION_SCHEDULE"),
		},
		Audit: Audit{
			Enabled: v.GetBool("AUDIT_ENABLED"),
			Dir:     v.GetString("AUDIT_DIR"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
