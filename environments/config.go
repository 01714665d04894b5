package environments

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultSMS8BaseURL = "https://app.sms8.io"

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	SMS8     SMS8Config
	Database DatabaseConfig
	Redis    RedisConfig
	Monitor  MonitorConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level  string
	Format string
}

type SMS8Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	DefaultRetries int
	BackoffStep    time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type MonitorConfig struct {
	AutoStart       bool
	Interval        time.Duration
	AlertWebhookURL string
	AlertThreshold  int
}

type AuthConfig struct {
	NodeAPIKey    string
	MonitorAPIKey string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Log: LogConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "console"),
		},
		SMS8: SMS8Config{
			APIKey:         GetEnv("SMS8_API_KEY", ""),
			BaseURL:        GetEnv("SMS8_BASE_URL", DefaultSMS8BaseURL),
			Timeout:        time.Duration(GetEnvAsInt("SMS8_TIMEOUT_SECONDS", 30)) * time.Second,
			DefaultRetries: GetEnvAsInt("SMS8_DEFAULT_RETRIES", 2),
			BackoffStep:    time.Duration(GetEnvAsInt("SMS8_BACKOFF_STEP_MS", 1000)) * time.Millisecond,
		},
		Database: DatabaseConfig{
			Enabled:  GetEnvAsBool("DB_ENABLED", false),
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "sms8"),
			Password: GetEnv("DB_PASSWORD", "sms8"),
			DBName:   GetEnv("DB_NAME", "sms8_gateway"),
		},
		Redis: RedisConfig{
			Enabled:  GetEnvAsBool("REDIS_ENABLED", false),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
			TTL:      GetEnvAsDuration("REDIS_SENT_TTL", 24*time.Hour),
		},
		Monitor: MonitorConfig{
			AutoStart:       GetEnvAsBool("MONITOR_AUTO_START", false),
			Interval:        time.Duration(GetEnvAsInt("MONITOR_INTERVAL_SECONDS", 60)) * time.Second,
			AlertWebhookURL: GetEnv("MONITOR_ALERT_WEBHOOK_URL", ""),
			AlertThreshold:  GetEnvAsInt("MONITOR_ALERT_THRESHOLD", 3),
		},
		Auth: AuthConfig{
			NodeAPIKey:    GetEnv("NODE_API_KEY", ""),
			MonitorAPIKey: GetEnv("MONITOR_API_KEY", ""),
		},
	}
}

// MissingSecrets lists the required keys that are unset. SMS8_API_KEY is not
// among them: callers may supply it per request.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.Auth.NodeAPIKey == "" {
		missing = append(missing, "NODE_API_KEY")
	}
	if c.Auth.MonitorAPIKey == "" {
		missing = append(missing, "MONITOR_API_KEY")
	}
	return missing
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
