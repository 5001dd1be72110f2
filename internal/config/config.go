package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Server Configuration
	HTTPPort int

	// Database Configuration. A postgres:// URL selects PostgreSQL;
	// anything else is a SQLite file path.
	DatabaseURL string

	// Classifier Configuration
	ThresholdsFile string

	// Logging Configuration
	LogFile      string
	LogToConsole bool

	// Optional MQTT ingest bridge (enabled when MQTTBroker is set)
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	// Optional Slack notifications for critical alerts
	SlackToken         string
	SlackAlertsChannel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsIntOrDefault("HTTP_PORT", 8000)

	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", "medical.db")

	cfg.ThresholdsFile = os.Getenv("THRESHOLDS_FILE")

	cfg.LogFile = getEnvOrDefault("LOG_FILE", "./logs/vitalwatch.log")
	cfg.LogToConsole = getEnvAsBoolOrDefault("LOG_TO_CONSOLE", true)

	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTTopic = getEnvOrDefault("MQTT_TOPIC", "vitalwatch/telemetry")
	cfg.MQTTClientID = getEnvOrDefault("MQTT_CLIENT_ID", "vitalwatch-server")
	cfg.MQTTUsername = os.Getenv("MQTT_USERNAME")
	cfg.MQTTPassword = os.Getenv("MQTT_PASSWORD")

	cfg.SlackToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackAlertsChannel = os.Getenv("SLACK_ALERTS_CHANNEL")

	return cfg, nil
}

// SlackEnabled returns true if Slack notifications are fully configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackAlertsChannel != ""
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the value of an environment variable as an integer or a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault returns the value of an environment variable as a boolean or a default value
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
