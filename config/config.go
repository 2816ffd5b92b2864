package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultConnectTimeout  = 8 * time.Second
	defaultAcquireTimeout  = 8 * time.Second
	defaultIdleTimeout     = 8 * time.Second
	defaultMaxLifetime     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMinConns        = 5
	defaultCacheMaxCost    = 64 << 20
)

type Config struct {
	DatabaseURL string
	Host        string
	Port        string

	// pool
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
	AcquireTimeout time.Duration
	IdleTimeout    time.Duration
	MaxLifetime    time.Duration

	LogLevel  string
	LogFormat string

	CacheEnabled bool
	CacheMaxCost int64

	PprofAddr       string
	ShutdownTimeout time.Duration
}

// Addr is the listen address built from HOST and PORT.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MissingEnvError lists every required variable that was not set.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "missing required env " + strings.Join(e.Names, ", ")
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		DatabaseURL: required("DATABASE_URL"),
		Host:        required("HOST"),
		Port:        required("PORT"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "json"),
		PprofAddr:   os.Getenv("PPROF_ADDR"),
	}
	maxConn := required("MAX_CONN")

	if len(missing) > 0 {
		return Config{}, &MissingEnvError{Names: missing}
	}

	var errs []error

	maxConns, err := strconv.ParseInt(maxConn, 10, 32)
	if err != nil || maxConns <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONN must be a positive integer, got %q", maxConn))
	}
	cfg.MaxConns = int32(maxConns)

	minConns, err := getEnvInt("MIN_CONN", min(defaultMinConns, maxConns))
	errs = append(errs, err)
	cfg.MinConns = int32(minConns)

	cfg.ConnectTimeout, err = getEnvSeconds("TIMEOUT_CONN", defaultConnectTimeout)
	errs = append(errs, err)
	cfg.AcquireTimeout, err = getEnvSeconds("ACQUIRE_CONN", defaultAcquireTimeout)
	errs = append(errs, err)
	cfg.IdleTimeout, err = getEnvSeconds("IDLE_CONN", defaultIdleTimeout)
	errs = append(errs, err)
	cfg.MaxLifetime, err = getEnvSeconds("LIFETIME_CONN", defaultMaxLifetime)
	errs = append(errs, err)
	cfg.ShutdownTimeout, err = getEnvSeconds("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	errs = append(errs, err)

	cfg.CacheEnabled, err = getEnvBool("CACHE_ENABLED", true)
	errs = append(errs, err)
	cfg.CacheMaxCost, err = getEnvInt("CACHE_MAX_COST", defaultCacheMaxCost)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
	}
	return i, nil
}

func getEnvSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	seconds, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number of seconds, got %q", key, value)
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}
