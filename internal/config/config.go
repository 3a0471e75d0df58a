package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"listrik/internal/log"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Catalog file with tariffs and seed appliances; empty means built-in defaults
	CatalogPath string

	// Per-browser ledgers
	SessionTTL           time.Duration
	SessionMax           int
	SessionCookie        string
	CacheCleanupInterval time.Duration

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// MQTT, disabled when the broker is empty
	MQTTBroker    string
	MQTTBaseTopic string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string
	MQTTRetain    bool
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", log.FormatText),

		CatalogPath: getEnv("CATALOG_PATH", ""),

		SessionTTL:           getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionMax:           getEnvInt("SESSION_MAX", 1000),
		SessionCookie:        getEnv("SESSION_COOKIE", "listrik_session"),
		CacheCleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "listrik"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		MQTTBroker:    getEnv("MQTT_BROKER", ""),
		MQTTBaseTopic: getEnv("MQTT_BASE_TOPIC", "listrik"),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "listrik"),
		MQTTUsername:  getEnv("MQTT_USERNAME", ""),
		MQTTPassword:  getEnv("MQTT_PASSWORD", ""),
		MQTTRetain:    getEnvBool("MQTT_RETAIN", true),
	}
}

// AMQPEnabled reports whether ledger events go to a broker.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// MQTTEnabled reports whether summaries go to an MQTT broker.
func (c *Config) MQTTEnabled() bool { return c.MQTTBroker != "" }

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case log.FormatText, log.FormatJSON, log.FormatTint:
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text, json or tint", c.LogFormat))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}
	if c.SessionCookie == "" {
		errors = append(errors, "session cookie name cannot be empty")
	}
	if c.CacheCleanupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache cleanup interval %v: must be at least 1 second", c.CacheCleanupInterval))
	}

	if c.CatalogPath != "" {
		if info, err := os.Stat(c.CatalogPath); err == nil && info.IsDir() {
			errors = append(errors, fmt.Sprintf("catalog path '%s' is a directory", c.CatalogPath))
		}
	}

	if c.AMQPEnabled() {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MQTTEnabled() {
		if parsedURL, err := url.Parse(c.MQTTBroker); err != nil {
			errors = append(errors, fmt.Sprintf("invalid MQTT broker '%s': %v", c.MQTTBroker, err))
		} else {
			switch parsedURL.Scheme {
			case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
			default:
				errors = append(errors, fmt.Sprintf("invalid MQTT broker scheme '%s': must be tcp, ssl, tls, mqtt, mqtts, ws or wss", parsedURL.Scheme))
			}
		}
		if strings.Trim(c.MQTTBaseTopic, "/") == "" {
			errors = append(errors, "MQTT base topic cannot be empty when MQTT broker is provided")
		}
		if strings.ContainsAny(c.MQTTBaseTopic, "#+") {
			errors = append(errors, fmt.Sprintf("invalid MQTT base topic '%s': wildcards are not allowed", c.MQTTBaseTopic))
		}
		if c.MQTTClientID == "" {
			errors = append(errors, "MQTT client ID cannot be empty when MQTT broker is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
