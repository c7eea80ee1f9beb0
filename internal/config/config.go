package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret           string
	JWTExpiresIn        time.Duration
	Auth0TokenExpiresIn time.Duration

	// Auth0
	Auth0Domain          string
	Auth0ClientID        string
	Auth0ClientSecret    string
	Auth0RedirectURI     string
	Auth0UserInfoTimeout time.Duration

	// CORS
	CORSOrigins       string
	CORSMethods       string
	CORSHeaders       string
	CORSExposeHeaders string
	CORSCredentials   bool
	CORSMaxAge        int

	// Upstream tenants
	Environment         string
	UpstreamTimeout     time.Duration
	UpstreamsConfigPath string

	// Response shaping
	ResponseUTCOffset int

	// Request monitor
	MonitorEnabled   bool
	MonitorLogBody   bool
	MonitorParseJSON bool
	MonitorPaths     string
	MonitorMaxBody   int

	// Logging
	LogLevel         string
	LogRetentionDays int
	SentryDSN        string

	// Server
	Port        string
	AppleAppIDs string
	AdminEmails string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "auth_gateway"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiresIn:        parseDuration(getEnv("JWT_EXPIRES_IN", "24h"), 24*time.Hour),
		Auth0TokenExpiresIn: parseDuration(getEnv("AUTH0_TOKEN_EXPIRES_IN", "720h"), 720*time.Hour),

		Auth0Domain:          getEnv("AUTH0_DOMAIN", ""),
		Auth0ClientID:        getEnv("AUTH0_CLIENT_ID", ""),
		Auth0ClientSecret:    getEnv("AUTH0_CLIENT_SECRET", ""),
		Auth0RedirectURI:     getEnv("AUTH0_REDIRECT_URI", "http://localhost:3000/api/auth/callback"),
		Auth0UserInfoTimeout: parseDuration(getEnv("AUTH0_USERINFO_TIMEOUT", "10s"), 10*time.Second),

		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		CORSMethods:       getEnv("CORS_METHODS", "GET,POST,PUT,DELETE,PATCH,OPTIONS"),
		CORSHeaders:       getEnv("CORS_HEADERS", "Origin,Content-Type,Accept,Authorization,Auth,deviceNumber,phoneModel,countryCode,version,appName"),
		CORSExposeHeaders: getEnv("CORS_EXPOSE_HEADERS", ""),
		CORSCredentials:   parseBool(getEnv("CORS_CREDENTIALS", "false")),
		CORSMaxAge:        parseInt(getEnv("CORS_MAX_AGE", "86400"), 86400),

		Environment:         getEnv("ENVIRONMENT", "dev"),
		UpstreamTimeout:     parseDuration(getEnv("UPSTREAM_TIMEOUT", "5s"), 5*time.Second),
		UpstreamsConfigPath: getEnv("UPSTREAMS_CONFIG_PATH", ""),

		ResponseUTCOffset: parseInt(getEnv("RESPONSE_UTC_OFFSET", "8"), 8),

		MonitorEnabled:   parseBool(getEnv("REQUEST_MONITOR_ENABLED", "false")),
		MonitorLogBody:   parseBool(getEnv("REQUEST_MONITOR_LOG_BODY", "true")),
		MonitorParseJSON: parseBool(getEnv("REQUEST_MONITOR_PARSE_JSON", "true")),
		MonitorPaths:     getEnv("REQUEST_MONITOR_PATHS", "*"),
		MonitorMaxBody:   parseInt(getEnv("REQUEST_MONITOR_MAX_BODY", "1000"), 1000),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),

		Port:        getEnv("PORT", "3000"),
		AppleAppIDs: getEnv("APPLE_APP_IDS", ""),
		AdminEmails: getEnv("ADMIN_EMAILS", ""),
	}
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// IsProduction selects the production upstream table.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// ResponseLocation is the fixed zone used for timestamps in responses.
func (c *Config) ResponseLocation() *time.Location {
	return time.FixedZone("", c.ResponseUTCOffset*3600)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}
