// Package config loads application settings from the environment.
//
// A .env file in the working directory is read first (godotenv), then viper
// maps environment variables onto the nested Config structs. Nested keys are
// addressed with underscores: database.host is DATABASE_HOST.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// ServerConfig is the listener. When ProxyHeader is set, the client IP is
// read from that header, but only on requests from TrustedProxies if any
// are listed.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ProxyHeader    string   `mapstructure:"proxy_header"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig selects the note and user store. Driver is "postgres" or
// "memory".
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxIdle  time.Duration `mapstructure:"conn_max_idle"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
}

// SessionConfig controls the login session cookie. Store is "memory" or
// "redis".
type SessionConfig struct {
	Store        string        `mapstructure:"store"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	Expiration   time.Duration `mapstructure:"expiration"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type SecurityConfig struct {
	CSRF          bool          `mapstructure:"csrf"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	LoginBurst    int           `mapstructure:"login_burst"`
	LoginInterval time.Duration `mapstructure:"login_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// URL renders the connection string understood by the pgx stdlib driver.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development" || a.Env == "dev" || a.Env == "local"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stickynotes")
	v.SetDefault("app.env", "production")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.proxy_header", "")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "stickynotes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_idle", "5m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookie_name", "sessionid")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.expiration", "336h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "session:")

	v.SetDefault("security.csrf", true)
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_expiration", "72h")
	v.SetDefault("security.login_burst", 10)
	v.SetDefault("security.login_interval", "6s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// DATABASE_URL wins over the discrete DATABASE_* settings.
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		db, err := parseDatabaseURL(dbURL, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		cfg.Database = db
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func parseDatabaseURL(dbURL string, base DatabaseConfig) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	cfg := base
	cfg.Driver = "postgres"
	cfg.Host = u.Hostname()
	cfg.Port = 5432
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q", p)
		}
		cfg.Port = port
	}
	cfg.User = u.User.Username()
	cfg.Password, _ = u.User.Password()
	cfg.Name = strings.TrimPrefix(u.Path, "/")
	if mode := u.Query().Get("sslmode"); mode != "" {
		cfg.SSLMode = mode
	}
	return cfg, nil
}
