package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	NotificationChannel string
	InsightCacheTTL     time.Duration
	InsightWorkers      int
	InsightPollInterval time.Duration
	RunInsightsOnStart  bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUFLEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduFlex API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("notifications.channel", "eduflex")
	v.SetDefault("insight.cache_ttl", "5m")
	v.SetDefault("insight.workers", 4)
	v.SetDefault("insight.poll_interval", "1h")
	v.SetDefault("insight.run_on_start", true)

	ttl, err := time.ParseDuration(v.GetString("insight.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid insight cache ttl: %w", err)
	}

	poll, err := time.ParseDuration(v.GetString("insight.poll_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid insight poll interval: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		NotificationChannel: v.GetString("notifications.channel"),
		InsightCacheTTL:     ttl,
		InsightWorkers:      v.GetInt("insight.workers"),
		InsightPollInterval: poll,
		RunInsightsOnStart:  v.GetBool("insight.run_on_start"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.InsightWorkers <= 0 {
		cfg.InsightWorkers = 4
	}

	return cfg, nil
}
