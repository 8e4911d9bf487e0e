package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// App is the service configuration, read from the environment.
type App struct {
	Port        string `envconfig:"PORT" default:"8080"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`

	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" default:"gym_user"`
	DBPassword     string `envconfig:"DB_PASSWORD" default:"gym_password"`
	DBName         string `envconfig:"DB_NAME" default:"gym_checkin_db"`
	DBSSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	RunMigrations  bool   `envconfig:"RUN_MIGRATIONS" default:"true"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	GymTimezone        string   `envconfig:"GYM_TIMEZONE" default:"Asia/Shanghai"`
	MonthlyDailyLimit  bool     `envconfig:"MONTHLY_DAILY_LIMIT" default:"false"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	NATSURL   string `envconfig:"NATS_URL"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// Load reads an optional .env file and then the process environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return App{}, fmt.Errorf("load .env: %w", err)
	}

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return App{}, err
	}
	return c, nil
}

// Validate checks values envconfig cannot express.
func (c App) Validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves GymTimezone; check-in dates are taken in this zone.
func (c App) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.GymTimezone))
	if err != nil {
		return nil, fmt.Errorf("invalid GYM_TIMEZONE %q: %w", c.GymTimezone, err)
	}
	return loc, nil
}

// DSN is the lib/pq connection string.
func (c App) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// AdminEnabled reports whether the token-protected admin routes are mounted.
func (c App) AdminEnabled() bool {
	return c.JWTSecret != ""
}
