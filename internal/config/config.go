package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
	Cache        CacheConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the rule engine settings
type AttendanceConfig struct {
	WorkStart            string
	WorkEnd              string
	Timezone             string
	DefaultRadiusMeters  float64
	LateCountThreshold   int
	LateMinutesThreshold int
}

// NotificationConfig tunes the outbox dispatcher
type NotificationConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	MaxRetries    uint
	RetryDelay    time.Duration
}

// CacheConfig sizes the store/employee directory cache
type CacheConfig struct {
	MaxEntries int64
	TTL        time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}
	var err error

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	if config.Database.Port, err = getEnvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if config.Database.MaxConns, err = getEnvInt("DB_MAX_CONNS", 25); err != nil {
		return nil, err
	}
	if config.Database.MinConns, err = getEnvInt("DB_MIN_CONNS", 5); err != nil {
		return nil, err
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance rules
	config.Attendance = AttendanceConfig{
		WorkStart: getEnv("WORK_START", "09:00"),
		WorkEnd:   getEnv("WORK_END", "18:00"),
		Timezone:  getEnv("WORK_TIMEZONE", "Asia/Taipei"),
	}
	if config.Attendance.DefaultRadiusMeters, err = getEnvFloat("GEOFENCE_DEFAULT_RADIUS", 50); err != nil {
		return nil, err
	}
	if config.Attendance.LateCountThreshold, err = getEnvInt("LATE_COUNT_THRESHOLD", 3); err != nil {
		return nil, err
	}
	if config.Attendance.LateMinutesThreshold, err = getEnvInt("LATE_MINUTES_THRESHOLD", 10); err != nil {
		return nil, err
	}

	// Notification dispatcher
	n := NotificationConfig{}
	if n.WorkerCount, err = getEnvInt("NOTIFICATION_WORKERS", 2); err != nil {
		return nil, err
	}
	if n.QueueSize, err = getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000); err != nil {
		return nil, err
	}
	if n.BatchSize, err = getEnvInt("NOTIFICATION_BATCH_SIZE", 50); err != nil {
		return nil, err
	}
	if n.FlushInterval, err = getEnvDuration("NOTIFICATION_FLUSH_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	retries, err := getEnvInt("NOTIFICATION_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	n.MaxRetries = uint(retries)
	if n.RetryDelay, err = getEnvDuration("NOTIFICATION_RETRY_DELAY", 200*time.Millisecond); err != nil {
		return nil, err
	}
	config.Notification = n

	// Directory cache
	maxEntries, err := getEnvInt("CACHE_MAX_ENTRIES", 10000)
	if err != nil {
		return nil, err
	}
	config.Cache.MaxEntries = int64(maxEntries)
	if config.Cache.TTL, err = getEnvDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if !validator.IsValidTimezone(c.Attendance.Timezone) {
		return fmt.Errorf("invalid WORK_TIMEZONE %q", c.Attendance.Timezone)
	}
	if !validator.IsValidClock(c.Attendance.WorkStart) {
		return fmt.Errorf("invalid WORK_START %q, expected HH:MM", c.Attendance.WorkStart)
	}
	if !validator.IsValidClock(c.Attendance.WorkEnd) {
		return fmt.Errorf("invalid WORK_END %q, expected HH:MM", c.Attendance.WorkEnd)
	}
	// HH:MM compares lexicographically
	if c.Attendance.WorkStart >= c.Attendance.WorkEnd {
		return fmt.Errorf("WORK_START must be before WORK_END")
	}
	if c.Attendance.DefaultRadiusMeters <= 0 {
		return fmt.Errorf("GEOFENCE_DEFAULT_RADIUS must be positive")
	}
	if c.Attendance.LateCountThreshold < 0 || c.Attendance.LateMinutesThreshold < 0 {
		return fmt.Errorf("late thresholds must not be negative")
	}
	if c.Notification.WorkerCount < 1 {
		return fmt.Errorf("NOTIFICATION_WORKERS must be at least 1")
	}
	return nil
}

// Location loads the working-hours timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Attendance.Timezone)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
