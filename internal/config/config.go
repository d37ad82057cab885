package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Library  LibraryConfig  `mapstructure:"library"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	PrivateKey  string `mapstructure:"private_key"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// LibraryConfig carries the lending policy knobs: loan periods, fine rates,
// grace period, fine cap and request limits.
type LibraryConfig struct {
	DefaultLoanDays       int           `mapstructure:"default_loan_days"`
	GracePeriodDays       int           `mapstructure:"grace_period_days"`
	DailyFineRate         float64       `mapstructure:"daily_fine_rate"`
	ReferenceDailyRate    float64       `mapstructure:"reference_daily_rate"`
	MaxFineAmount         float64       `mapstructure:"max_fine_amount"`
	MinWaiverReasonLength int           `mapstructure:"min_waiver_reason_length"`
	MaxOpenRequests       int           `mapstructure:"max_open_requests"`
	SweepInterval         time.Duration `mapstructure:"sweep_interval"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.ulms")
	viper.AddConfigPath("/etc/ulms")

	viper.SetEnvPrefix("ULMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("library.default_loan_days", 14)
	viper.SetDefault("library.grace_period_days", 2)
	viper.SetDefault("library.daily_fine_rate", 0.50)
	viper.SetDefault("library.reference_daily_rate", 1.00)
	viper.SetDefault("library.max_fine_amount", 50.00)
	viper.SetDefault("library.min_waiver_reason_length", 10)
	viper.SetDefault("library.max_open_requests", 5)
	viper.SetDefault("library.sweep_interval", "1h")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, use defaults and environment variables
			fmt.Printf("Config file not found, using defaults and environment variables\n")
		}
	}

	// Override with environment variables
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		viper.Set("redis.url", redisURL)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
