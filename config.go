package blogapi

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/blogapi/content"
)

// Config holds all configuration for the API server.
type Config struct {
	Name        string // Site name used in the RSS channel (default "Clothes2Wear Blog")
	URL         string // Public site URL used for post links (default "http://localhost:3000")
	Description string // RSS channel description

	Addr        string // Listen address (default ":3000")
	DBDriver    string // "sqlite" or "postgres" (default "sqlite")
	DatabaseURL string // SQLite path or PostgreSQL DSN (default "data/blog.db")

	JWTSecret string // Required: HS256 secret shared with the token issuer

	ImageBaseURL string // Prefix of og:image URLs
	UploadDir    string // Directory for processed uploads (default "uploads")

	RateLimit  int           // Requests per window per IP (default 100)
	RateWindow time.Duration // Rate limit window (default 15min)
	BodyLimit  string        // Max request body (default "12M")

	AllowOrigins []string // CORS origins (default "*")

	CacheTTL      time.Duration // Public post cache TTL (default 5min)
	RedisAddr     string        // Use Redis for the post cache when set
	RedisPassword string
	NATSURL       string // Publish domain events to NATS when set

	MetricsEnabled bool   // Expose /metrics
	LogLevel       string // debug, info, warn, error (default "info")
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Clothes2Wear Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Latest fashion insights and blogs from Clothes2Wear"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/blog.db"
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = "https://clothes2wear.blr1.cdn.digitaloceanspaces.com/images/"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 100
	}
	if c.RateWindow == 0 {
		c.RateWindow = 15 * time.Minute
	}
	if c.BodyLimit == "" {
		c.BodyLimit = "12M"
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"*"}
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Name:           os.Getenv("SITE_NAME"),
		URL:            os.Getenv("SITE_URL"),
		Description:    os.Getenv("SITE_DESCRIPTION"),
		Addr:           os.Getenv("ADDR"),
		DBDriver:       os.Getenv("DB_DRIVER"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ImageBaseURL:   os.Getenv("IMAGE_BASE_URL"),
		UploadDir:      os.Getenv("UPLOAD_DIR"),
		BodyLimit:      os.Getenv("BODY_LIMIT"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		NATSURL:        os.Getenv("NATS_URL"),
		MetricsEnabled: EnvOr("METRICS_ENABLED", "false") == "true",
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}

	var err error
	if cfg.RateLimit, err = envInt("RATE_LIMIT"); err != nil {
		return Config{}, err
	}
	if cfg.RateWindow, err = envDuration("RATE_WINDOW"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL"); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses an already opened gateway instead of opening one from
// Config.
func WithStore(s Gateway) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithCache sets the public post cache. The default is an in-memory cache,
// or Redis when RedisAddr is configured.
func WithCache(c content.Cache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// WithPublisher sets the event publisher. The default discards events, or
// publishes to NATS when NATSURL is configured.
func WithPublisher(p content.Publisher) Option {
	return func(a *App) {
		a.Events = p
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
