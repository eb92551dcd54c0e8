package global

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config holds everything the process needs at startup. All of it comes
// from environment variables; missing required values abort startup.
type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	SecretKey string

	// Redis is optional: when RedisAddr is empty the snapshot cache and
	// the presence mirror are disabled.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr string
}

// Load reads the environment and fails fast, reporting every missing
// required variable at once rather than one per restart.
func Load() (*Config, error) {
	cfg := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
	}

	var missing []string
	for _, v := range []struct {
		name, val string
	}{
		{"DB_USER", cfg.DBUser},
		{"DB_PASSWORD", cfg.DBPassword},
		{"DB_HOST", cfg.DBHost},
		{"DB_NAME", cfg.DBName},
		{"SECRET_KEY", cfg.SecretKey},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Wrap(err, "REDIS_DB must be an integer")
		}
		cfg.RedisDB = n
	}
	return cfg, nil
}

// DatabaseURL builds a pgx connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) JWTSecret() []byte {
	return []byte(c.SecretKey)
}
