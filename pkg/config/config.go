package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

type Config struct {
	Env string

	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Log     LogConfig
	Listing ListingConfig
	Forms   FormsConfig
	Monitor MonitorConfig
	CORS    CORSConfig
}

// APIConfig points the console at the backend REST API.
type APIConfig struct {
	Origin  string
	Prefix  string
	Timeout time.Duration
}

// BaseURL joins origin and prefix into the request base.
func (c APIConfig) BaseURL() string {
	prefix := "/" + strings.Trim(c.Prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	return strings.TrimRight(c.Origin, "/") + prefix
}

// SessionConfig selects where token, user and selectedInstitution persist.
type SessionConfig struct {
	Store     string
	File      string
	KeyPrefix string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig lists the browser origins allowed to read the monitor server.
type CORSConfig struct {
	AllowedOrigins []string
}

// ListingConfig tunes list controllers.
type ListingConfig struct {
	DefaultPageSize   int
	FullFetchPageSize int
}

// FormsConfig tunes submit feedback.
type FormsConfig struct {
	SuccessRedirectDelay time.Duration
	BannerTTL            time.Duration
}

// MonitorConfig configures the performance monitor server.
type MonitorConfig struct {
	Port     int
	Interval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		Origin:  v.GetString("API_ORIGIN"),
		Prefix:  v.GetString("API_PREFIX"),
		Timeout: parseDuration(v.GetString("HTTP_TIMEOUT"), 30*time.Second),
	}

	cfg.Session = SessionConfig{
		Store:     strings.ToLower(v.GetString("SESSION_STORE")),
		File:      v.GetString("SESSION_FILE"),
		KeyPrefix: v.GetString("SESSION_KEY_PREFIX"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Listing = ListingConfig{
		DefaultPageSize:   positiveOr(v.GetInt("DEFAULT_PAGE_SIZE"), 10),
		FullFetchPageSize: positiveOr(v.GetInt("FULL_FETCH_PAGE_SIZE"), 100),
	}

	cfg.Forms = FormsConfig{
		SuccessRedirectDelay: parseDuration(v.GetString("SUCCESS_REDIRECT_DELAY"), 1500*time.Millisecond),
		BannerTTL:            parseDuration(v.GetString("BANNER_TTL"), 4*time.Second),
	}

	interval, err := ParseMonitorInterval(v.GetString("MONITOR_INTERVAL"))
	if err != nil {
		return nil, err
	}
	cfg.Monitor = MonitorConfig{
		Port:     v.GetInt("MONITOR_PORT"),
		Interval: interval,
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.API.Origin) == "" {
		return errors.New("API_ORIGIN is required")
	}
	switch c.Session.Store {
	case SessionStoreFile, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_ORIGIN", "http://localhost:5000")
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("HTTP_TIMEOUT", "30s")

	v.SetDefault("SESSION_STORE", SessionStoreFile)
	v.SetDefault("SESSION_FILE", ".sgcctl-session.json")
	v.SetDefault("SESSION_KEY_PREFIX", "sgc:session:")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("FULL_FETCH_PAGE_SIZE", 100)

	v.SetDefault("SUCCESS_REDIRECT_DELAY", "1500ms")
	v.SetDefault("BANNER_TTL", "4s")

	v.SetDefault("MONITOR_PORT", 9091)
	v.SetDefault("MONITOR_INTERVAL", "30s")
}

// ParseMonitorInterval accepts the auto-refresh choices: off, 10s, 30s, 60s.
func ParseMonitorInterval(raw string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "off", "0", "0s":
		return 0, nil
	case "10s":
		return 10 * time.Second, nil
	case "30s":
		return 30 * time.Second, nil
	case "60s", "1m":
		return 60 * time.Second, nil
	}
	return 0, fmt.Errorf("unsupported monitor interval %q (use off, 10s, 30s or 60s)", raw)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
