package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is loaded once from the environment at startup. Everything
// the service tunes lives here; packages receive it, never os.Getenv.
type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	JWTSecret    string
	JWTAccessTTL time.Duration
	ResetTTL     time.Duration

	FrontendURL       string
	ResetPasswordPath string

	CORSAllowedOrigins []string
	BodyLimitBytes     int64

	ReadinessProbeTimeout  time.Duration
	ServerStartGracePeriod time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:           env,
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "auth"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		ResetPasswordPath: getEnv("RESET_PASSWORD_PATH", "/reset-password"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		BodyLimitBytes:     int64(getEnvInt("BODY_LIMIT_BYTES", 1<<20)),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "auth-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		dst *time.Duration
		key string
		def string
	}{
		{&cfg.JWTAccessTTL, "JWT_ACCESS_TTL", "30m"},
		{&cfg.ResetTTL, "RESET_TOKEN_TTL", "15m"},
		{&cfg.ReadinessProbeTimeout, "READINESS_PROBE_TIMEOUT", "2s"},
		{&cfg.ServerStartGracePeriod, "SERVER_START_GRACE_PERIOD", "0s"},
		{&cfg.OTELMetricsExportInterval, "OTEL_METRICS_EXPORT_INTERVAL", "10s"},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every violation at once so a broken deployment is
// fixed in one pass, not one restart per missing variable.
func (c *Config) Validate() error {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.DatabaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if c.RedisAddr == "" {
		fail("REDIS_ADDR is required")
	}
	if len(c.JWTSecret) < 32 {
		fail("JWT_SECRET must be at least 32 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > 24*time.Hour {
		fail("JWT_ACCESS_TTL must be between 1s and 24h")
	}
	if c.ResetTTL <= 0 || c.ResetTTL > time.Hour {
		fail("RESET_TOKEN_TTL must be between 1s and 1h")
	}
	if c.BodyLimitBytes <= 0 {
		fail("BODY_LIMIT_BYTES must be > 0")
	}
	if c.ReadinessProbeTimeout <= 0 {
		fail("READINESS_PROBE_TIMEOUT must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		fail("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		fail("OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		fail("OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	switch c.OTELLogLevel {
	case "debug", "info", "warn", "error":
	default:
		fail("OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ResetURL builds the link mailed to users, pointing at the frontend
// reset page with the token appended.
func (c *Config) ResetURL(token string) string {
	base := strings.TrimRight(c.FrontendURL, "/")
	path := "/" + strings.Trim(c.ResetPasswordPath, "/")
	return base + path + "/" + token
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func getEnvInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if trim := strings.TrimSpace(p); trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
