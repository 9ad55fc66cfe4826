package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; the signing secret is read once here and handed
// to the auth service at construction.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	StoreDriver string // "mysql" or "memory"
	DBDSN       string // MySQL connection string
	JWTSecret   string // secret used to sign session tokens
	BcryptCost  int    // bcrypt cost for password hashing
	LogLevel    string // logrus level name
	LogFormat   string // "text" or "json"
	RabbitURL   string // AMQP broker URL; empty disables the event queue

	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// Load reads an optional .env file and then the environment. Missing
// required variables are reported together in one error.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file; real env vars win

	cfg := Config{
		Env:         envStr("APP_ENV", "dev"),
		Port:        envStr("APP_PORT", envStr("PORT", "5000")),
		StoreDriver: strings.ToLower(envStr("STORE_DRIVER", "mysql")),
		DBDSN:       os.Getenv("DB_DSN"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		BcryptCost:  envInt("BCRYPT_COST", 10),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogFormat:   envStr("LOG_FORMAT", "text"),
		RabbitURL:   envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		Redis:       LoadRedisConfig(),
		Cache:       LoadCacheConfig(),
		RateLimit:   LoadRateLimitConfig(),
	}

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.StoreDriver == "mysql" && cfg.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.StoreDriver != "mysql" && cfg.StoreDriver != "memory" {
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}
