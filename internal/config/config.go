// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort      string
	DBDriver     string
	DatabaseDSN  string
	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool
	RabbitMQURL  string
	BcryptCost   int
	LogLevel     string
	SeedData     bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "inkwell.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "1h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("RABBITMQ_URL", "") // empty disables domain events
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_DATA", false)
}

// Load reads envFiles (missing files are skipped) into the process
// environment and builds a Config from it.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		// Variables already set in the environment win over the file.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:      v.GetString("APP_PORT"),
		DBDriver:     v.GetString("DB_DRIVER"),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTTTL:       v.GetDuration("JWT_TTL"),
		CookieSecure: v.GetBool("COOKIE_SECURE"),
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),
		BcryptCost:   v.GetInt("BCRYPT_COST"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		SeedData:     v.GetBool("SEED_DATA"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be a positive duration, got %s", c.JWTTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT must be set")
	}
	return nil
}
