// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings,
// logging, database path, publish safety limits, job cadences, external API
// credentials, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// SafetyConfig holds the publish safety-gate limits. Both have sane
// defaults; raising them is an explicit operator decision.
type SafetyConfig struct {
	MaxPostsPerDay  int           // hard daily publish cap, counted since local midnight
	MinPostInterval time.Duration // minimum spacing between two publishes
}

// JobsConfig holds the cron specs for every job plus the fixed throttles
// used inside cycles. Cadence is configuration, not protocol.
type JobsConfig struct {
	PublishSpec  string // publish-check, default every 5 minutes
	CommentSpec  string // comment-check, default every 30 minutes
	MetricsSpec  string // metrics analyzer + collector, default daily 08:00
	EngineSpec   string // autonomous content engine, default daily 07:00
	TrendingSpec string // trending topics, default weekly Monday 06:00
	ProductsSpec string // product orchestration, default 10:00 and 15:00
	TokenSpec    string // token monitor, default daily 09:00 (also runs at boot)

	ReplyThrottle   time.Duration // pause between consecutive outbound replies
	CollectThrottle time.Duration // pause between engagement fetches

	ResponderRecentPosts int // platform posts scanned per responder cycle
	CollectorWindowDays  int // lookback window for the performance collector
	CollectorMaxPosts    int // per-cycle cap on collected posts
	EngineRecentTopics   int // published topics seeding the avoidance set
}

// SocialConfig holds the platform credential and endpoint settings.
type SocialConfig struct {
	BaseURL     string        // Graph API base URL
	AccessToken string        // long-lived page credential
	PageID      string        // page whose feed the jobs operate on
	Timeout     time.Duration // per-request HTTP timeout
}

// TextGenConfig holds the text-generation API settings. Models is an
// ordered fallback list; the client walks it on repeated rate limiting.
type TextGenConfig struct {
	BaseURL      string
	APIKey       string
	Models       []string
	MaxRetries   int           // attempts per model before falling back
	RetryBackoff time.Duration // fixed wait after a rate-limit response
	Timeout      time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for the admin API routes

	// App
	DBPath         string // SQLite path
	WebhookURL     string // optional notification webhook, empty disables delivery
	Safety         SafetyConfig
	Jobs           JobsConfig
	Social         SocialConfig
	TextGen        TextGenConfig

	// Rate limiting (admin HTTP surface)
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:     getenv("DB_PATH", "agency.db"),
		WebhookURL: getenv("NOTIFY_WEBHOOK_URL", ""),

		Safety: SafetyConfig{
			MaxPostsPerDay:  getint("MAX_POSTS_PER_DAY", 5),
			MinPostInterval: getdur("MIN_POST_INTERVAL", 2*time.Hour),
		},

		Jobs: JobsConfig{
			PublishSpec:  getenv("SCHEDULE_PUBLISH", "*/5 * * * *"),
			CommentSpec:  getenv("SCHEDULE_COMMENTS", "*/30 * * * *"),
			MetricsSpec:  getenv("SCHEDULE_METRICS", "0 8 * * *"),
			EngineSpec:   getenv("SCHEDULE_ENGINE", "0 7 * * *"),
			TrendingSpec: getenv("SCHEDULE_TRENDING", "0 6 * * 1"),
			ProductsSpec: getenv("SCHEDULE_PRODUCTS", "0 10,15 * * *"),
			TokenSpec:    getenv("SCHEDULE_TOKEN", "0 9 * * *"),

			ReplyThrottle:   getdur("REPLY_THROTTLE", 3*time.Second),
			CollectThrottle: getdur("COLLECT_THROTTLE", 2*time.Second),

			ResponderRecentPosts: getint("RESPONDER_RECENT_POSTS", 10),
			CollectorWindowDays:  getint("COLLECTOR_WINDOW_DAYS", 7),
			CollectorMaxPosts:    getint("COLLECTOR_MAX_POSTS", 20),
			EngineRecentTopics:   getint("ENGINE_RECENT_TOPICS", 10),
		},

		Social: SocialConfig{
			BaseURL:     getenv("SOCIAL_API_URL", "https://graph.facebook.com/v19.0"),
			AccessToken: getenv("SOCIAL_ACCESS_TOKEN", ""),
			PageID:      getenv("SOCIAL_PAGE_ID", ""),
			Timeout:     getdur("SOCIAL_TIMEOUT", 10*time.Second),
		},

		TextGen: TextGenConfig{
			BaseURL:      getenv("TEXTGEN_API_URL", "https://api.groq.com/openai/v1"),
			APIKey:       getenv("TEXTGEN_API_KEY", ""),
			Models:       splitCSV(getenv("TEXTGEN_MODELS", "llama-3.3-70b-versatile,llama-3.1-8b-instant")),
			MaxRetries:   getint("TEXTGEN_RETRIES", 3),
			RetryBackoff: getdur("TEXTGEN_BACKOFF", 10*time.Second),
			Timeout:      getdur("TEXTGEN_TIMEOUT", 60*time.Second),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-agency-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Safety.MaxPostsPerDay < 1 {
		return cfg, errors.New("MAX_POSTS_PER_DAY must be >= 1")
	}
	if cfg.Safety.MinPostInterval < 0 {
		return cfg, errors.New("MIN_POST_INTERVAL must be >= 0")
	}
	if cfg.Jobs.ReplyThrottle < 0 || cfg.Jobs.CollectThrottle < 0 {
		return cfg, errors.New("throttles must be >= 0")
	}
	if cfg.Jobs.ResponderRecentPosts < 1 || cfg.Jobs.CollectorMaxPosts < 1 || cfg.Jobs.EngineRecentTopics < 1 {
		return cfg, errors.New("job batch sizes must be >= 1")
	}
	if cfg.Jobs.CollectorWindowDays < 1 {
		return cfg, errors.New("COLLECTOR_WINDOW_DAYS must be >= 1")
	}
	if len(cfg.TextGen.Models) == 0 {
		return cfg, errors.New("TEXTGEN_MODELS must list at least one model")
	}
	if cfg.TextGen.MaxRetries < 1 {
		return cfg, errors.New("TEXTGEN_RETRIES must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
