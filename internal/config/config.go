package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jacoelho/rowmap/internal/logger"
	"github.com/jacoelho/rowmap/internal/source"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. ROWMAP_SERVER_ADDR.
	EnvPrefix = "ROWMAP"

	DefaultAddr         = ":3001"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = source.DefaultMaxBodyBytes
)

// Store drivers.
const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the complete configuration for the rowmap service and CLI.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Store  StoreConfig  `mapstructure:"store"`
	Redis  RedisConfig  `mapstructure:"redis"`
	S3     S3Config     `mapstructure:"s3"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	RateLimit       float64       `mapstructure:"rate_limit"` // Requests per second per client IP (0 = unlimited)
	RateBurst       int           `mapstructure:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // Requests per second per upstream host (0 = unlimited)
	Insecure     bool          `mapstructure:"insecure"`
	CACertFile   string        `mapstructure:"cacert"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type StoreConfig struct {
	Driver     string        `mapstructure:"driver"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// SetDefaults registers every key, which also makes it resolvable from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("fetch.timeout", DefaultTimeout)
	v.SetDefault("fetch.rate_limit", 0.0)
	v.SetDefault("fetch.insecure", false)
	v.SetDefault("fetch.cacert", "")
	v.SetDefault("fetch.max_body_bytes", DefaultMaxBodyBytes)

	v.SetDefault("store.driver", DriverRedis)
	v.SetDefault("store.sqlite_path", "rowmap.db")
	v.SetDefault("store.ttl", time.Duration(0))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 2*time.Second)

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.add_source", false)
}

// Load resolves configuration from defaults, the optional file, ROWMAP_* environment
// variables and any flags already bound to v, in increasing order of precedence.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverRedis, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Store.Driver == DriverSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("%w: store.sqlite_path is required for the sqlite driver", ErrInvalidConfig)
	}

	if c.Server.RateLimit < 0 || c.Fetch.RateLimit < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}

	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout must not be negative", ErrInvalidConfig)
	}

	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: fetch.max_body_bytes must be positive", ErrInvalidConfig)
	}

	if c.Fetch.CACertFile != "" {
		if _, err := os.Stat(c.Fetch.CACertFile); err != nil {
			return fmt.Errorf("CA certificate file %s not found: %w", c.Fetch.CACertFile, err)
		}
	}

	return nil
}

// TLSConfig returns a TLS configuration based on the fetch settings.
func (c *Config) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.Fetch.Insecure,
	}

	if c.Fetch.CACertFile != "" {
		caCertPool, err := x509.SystemCertPool()
		if err != nil {
			caCertPool = x509.NewCertPool()
		}

		caCert, err := os.ReadFile(c.Fetch.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", c.Fetch.CACertFile, err)
		}

		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", c.Fetch.CACertFile)
		}

		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// HTTPClient creates the document fetch client configured with the settings from this Config.
func (c *Config) HTTPClient() (*http.Client, error) {
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
	}

	return source.NewHTTPClient(tlsConfig, c.Fetch.Timeout), nil
}

// S3Source returns the object storage settings for S3 document sources.
func (c *Config) S3Source() source.S3Config {
	return source.S3Config{
		Endpoint:  c.S3.Endpoint,
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
		Region:    c.S3.Region,
		UseSSL:    c.S3.UseSSL,
	}
}

// Logger returns the logging settings.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:     c.Log.Level,
		Format:    c.Log.Format,
		AddSource: c.Log.AddSource,
	}
}
