package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/dentalops/clinic-api/pkg/logger"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    logger.Config    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	SlotTTL  time.Duration `mapstructure:"slot_ttl"`
	Disabled bool          `mapstructure:"disabled"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	ClinicEmail string `mapstructure:"clinic_email"`
}

// SchedulingConfig carries the clinic's slot grid. The availability template
// is authoritative for per-doctor working windows; day start and end only
// bound what a template may contain.
type SchedulingConfig struct {
	GridSizeMinutes int `mapstructure:"grid_size_minutes"`
	DayStartMinutes int `mapstructure:"day_start_minutes"`
	DayEndMinutes   int `mapstructure:"day_end_minutes"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.request_timeout", 30*time.Second)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.slot_ttl", 5*time.Minute)
	viper.SetDefault("scheduling.grid_size_minutes", 30)
	viper.SetDefault("scheduling.day_start_minutes", 0)
	viper.SetDefault("scheduling.day_end_minutes", 1440)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.pretty", false)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
