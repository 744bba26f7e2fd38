// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tenant    TenantConfig    `koanf:"tenant"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
	CleanupInterval    time.Duration `koanf:"cleanup_interval"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// TenantConfig controls how resolved tenant configuration is cached.
type TenantConfig struct {
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	CachePrefix string        `koanf:"cache_prefix"`
}

// BootstrapConfig holds the seed data written by the startup migration.
type BootstrapConfig struct {
	Enabled         bool          `koanf:"enabled"`
	LockKey         int64         `koanf:"lock_key"`
	SuperAdmin      SeedUser      `koanf:"super_admin"`
	RestrictedAdmin SeedUser      `koanf:"restricted_admin"`
	SecondTenant    SeedTenant    `koanf:"second_tenant"`
	Timeout         time.Duration `koanf:"timeout"`
}

type SeedUser struct {
	Email        string `koanf:"email"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name"`
	TenantID     string `koanf:"tenant_id"`
	Role         string `koanf:"role"`
	DetailedRole string `koanf:"detailed_role"`
	PhaseLimit   int    `koanf:"phase_limit"`
}

type SeedTenant struct {
	Code           string `koanf:"code"`
	Name           string `koanf:"name"`
	Region         string `koanf:"region"`
	PrimaryColor   string `koanf:"primary_color"`
	SecondaryColor string `koanf:"secondary_color"`
}

// Load reads defaults, then the optional yaml file, then the environment.
// A .env file in the working directory is applied to the environment first
// without overriding variables that are already set.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "RecIMS",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "recims",
		"jwt.audience":             "recims-api",
		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",
		"jwt.cleanup_interval":     "1h",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:5173"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "recims-api",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",

		"tenant.cache_ttl":    "5m",
		"tenant.cache_prefix": "tenant:config",

		"bootstrap.enabled":  true,
		"bootstrap.lock_key": 7_240_311,
		"bootstrap.timeout":  "60s",

		"bootstrap.super_admin.email":         "admin@recims.com",
		"bootstrap.super_admin.password":      "RecIMS-Admin-2024!",
		"bootstrap.super_admin.name":          "RecIMS Super Admin",
		"bootstrap.super_admin.tenant_id":     "TNT-001",
		"bootstrap.super_admin.role":          "super_admin",
		"bootstrap.super_admin.detailed_role": "superadmin",

		"bootstrap.restricted_admin.email":         "admin@connecticutmetals.com",
		"bootstrap.restricted_admin.password":      "CTMetals-Admin-2024!",
		"bootstrap.restricted_admin.name":          "Connecticut Metals Admin",
		"bootstrap.restricted_admin.tenant_id":     "connecticut_metals",
		"bootstrap.restricted_admin.role":          "phase3_admin",
		"bootstrap.restricted_admin.detailed_role": "admin",
		"bootstrap.restricted_admin.phase_limit":   3,

		"bootstrap.second_tenant.code":            "connecticut_metals",
		"bootstrap.second_tenant.name":            "Connecticut Metals",
		"bootstrap.second_tenant.region":          "USA",
		"bootstrap.second_tenant.primary_color":   "#1E3A8A",
		"bootstrap.second_tenant.secondary_color": "#F59E0B",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
	"TENANT_CACHE_TTL":            "tenant.cache_ttl",
	"BOOTSTRAP_ENABLED":           "bootstrap.enabled",
	"SUPER_ADMIN_EMAIL":           "bootstrap.super_admin.email",
	"SUPER_ADMIN_PASSWORD":        "bootstrap.super_admin.password",
	"RESTRICTED_ADMIN_EMAIL":      "bootstrap.restricted_admin.email",
	"RESTRICTED_ADMIN_PASSWORD":   "bootstrap.restricted_admin.password",
	"RESTRICTED_ADMIN_NAME":       "bootstrap.restricted_admin.name",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.JWT.PublicKeyPath == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Tenant.CacheTTL < 0 {
		return fmt.Errorf("tenant.cache_ttl must not be negative")
	}

	if c.Bootstrap.Enabled {
		if c.Bootstrap.SuperAdmin.Email == "" ||
			c.Bootstrap.RestrictedAdmin.Email == "" {
			return fmt.Errorf("bootstrap admin emails are required")
		}
		if c.Bootstrap.SecondTenant.Code == "" {
			return fmt.Errorf("bootstrap.second_tenant.code is required")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
