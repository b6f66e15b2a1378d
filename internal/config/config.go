package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StateStoreSQL   = "sql"
	StateStoreRedis = "redis"
)

// DefaultScopes grants read access to tasks, calendars, mail and the basic profile.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/tasks.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Config is read once at startup from the environment.
type Config struct {
	// Server
	Port     string
	LogLevel string

	// Database
	DBDriver    string
	DatabaseURL string

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	GoogleScopes       []string
	GoogleRevokeURL    string

	// Outbound rate limit
	GoogleAPIQPS   float64
	GoogleAPIBurst int

	// Authorization states
	StateStore string
	StateTTL   time.Duration
	RedisAddr  string
	RedisDB    int

	// Aggregation
	TaskQuota int
	EventsMax int
	InboxMax  int
}

// Load reads Config from the environment. All missing required variables are
// reported together.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.GoogleClientID = required("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = required("GOOGLE_CLIENT_SECRET")
	cfg.GoogleCallbackURL = required("GOOGLE_CALLBACK_URL")
	cfg.DatabaseURL = required("DATABASE_URL")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.Port = getEnvString("PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.DBDriver = getEnvString("DB_DRIVER", "mysql")
	cfg.GoogleScopes = DefaultScopes
	if v := os.Getenv("GOOGLE_SCOPES"); strings.TrimSpace(v) != "" {
		cfg.GoogleScopes = strings.Fields(v)
	}
	cfg.GoogleRevokeURL = getEnvString("GOOGLE_REVOKE_URL", "")
	cfg.GoogleAPIQPS = getEnvFloat("GOOGLE_API_QPS", 10)
	cfg.GoogleAPIBurst = getEnvInt("GOOGLE_API_BURST", 20)
	cfg.StateStore = getEnvString("STATE_STORE", StateStoreSQL)
	cfg.StateTTL = getEnvDuration("STATE_TTL", 15*time.Minute)
	cfg.RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.TaskQuota = getEnvInt("TASK_QUOTA", 10)
	cfg.EventsMax = getEnvInt("EVENTS_MAX", 10)
	cfg.InboxMax = getEnvInt("INBOX_MAX", 10)

	switch cfg.StateStore {
	case StateStoreSQL, StateStoreRedis:
	default:
		return nil, fmt.Errorf("unsupported STATE_STORE %q", cfg.StateStore)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
