package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.Safety.MaxPostsPerDay != 5 {
		t.Errorf("MaxPostsPerDay = %d, want 5", cfg.Safety.MaxPostsPerDay)
	}
	if cfg.Safety.MinPostInterval != 2*time.Hour {
		t.Errorf("MinPostInterval = %v, want 2h", cfg.Safety.MinPostInterval)
	}
	if cfg.Jobs.PublishSpec != "*/5 * * * *" {
		t.Errorf("PublishSpec = %q", cfg.Jobs.PublishSpec)
	}
	if cfg.Jobs.TrendingSpec != "0 6 * * 1" {
		t.Errorf("TrendingSpec = %q", cfg.Jobs.TrendingSpec)
	}
	if len(cfg.TextGen.Models) != 2 || cfg.TextGen.Models[0] != "llama-3.3-70b-versatile" {
		t.Errorf("TextGen.Models = %v", cfg.TextGen.Models)
	}
	if cfg.OTEL.ServiceName != "go-agency-backend" {
		t.Errorf("OTEL.ServiceName = %q", cfg.OTEL.ServiceName)
	}
	if cfg.WebhookURL != "" {
		t.Errorf("WebhookURL = %q, want empty", cfg.WebhookURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("MAX_POSTS_PER_DAY", "3")
	t.Setenv("MIN_POST_INTERVAL", "45m")
	t.Setenv("SCHEDULE_PUBLISH", "*/2 * * * *")
	t.Setenv("TEXTGEN_MODELS", " modelo-a , modelo-b ,")
	t.Setenv("API_BASE_PATH", "admin/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pulso.example,https://app.pulso.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, unknown values should fall back to release", cfg.GinMode)
	}
	if cfg.Safety.MaxPostsPerDay != 3 {
		t.Errorf("MaxPostsPerDay = %d", cfg.Safety.MaxPostsPerDay)
	}
	if cfg.Safety.MinPostInterval != 45*time.Minute {
		t.Errorf("MinPostInterval = %v", cfg.Safety.MinPostInterval)
	}
	if cfg.Jobs.PublishSpec != "*/2 * * * *" {
		t.Errorf("PublishSpec = %q", cfg.Jobs.PublishSpec)
	}
	if len(cfg.TextGen.Models) != 2 || cfg.TextGen.Models[1] != "modelo-b" {
		t.Errorf("TextGen.Models = %v", cfg.TextGen.Models)
	}
	if cfg.APIBasePath != "/admin" {
		t.Errorf("APIBasePath = %q, want /admin", cfg.APIBasePath)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero daily cap", "MAX_POSTS_PER_DAY", "0", "MAX_POSTS_PER_DAY"},
		{"negative spacing", "MIN_POST_INTERVAL", "-1h", "MIN_POST_INTERVAL"},
		{"zero collector window", "COLLECTOR_WINDOW_DAYS", "0", "COLLECTOR_WINDOW_DAYS"},
		{"zero retries", "TEXTGEN_RETRIES", "0", "TEXTGEN_RETRIES"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load should fail when %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %s", err, tc.want)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/v1/", "/api/v1"},
		{"  /api  ", "/api"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("FLAG", "on")
	if !getbool("FLAG", false) {
		t.Error("on should parse as true")
	}
	t.Setenv("FLAG", "No")
	if getbool("FLAG", true) {
		t.Error("No should parse as false")
	}
	t.Setenv("FLAG", "maybe")
	if !getbool("FLAG", true) {
		t.Error("unparseable value should keep the default")
	}
}
