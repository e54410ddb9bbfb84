package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// TrustedProxies lists the CIDR ranges allowed to set X-Forwarded-For.
	// When empty the peer address is the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// StoreTimeout bounds the store calls of a single auth operation.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT, default=10s"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Activity  ActivityConfig
	AppCache  AppCacheConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=authd"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=2s"`
}

type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL,            default=24h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=5m"`
}

type RateLimitConfig struct {
	// Max requests per IP per window; 0 disables limiting.
	Max    int           `env:"RATE_LIMIT_MAX,    default=30"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=4"`
}

type AppCacheConfig struct {
	TTL time.Duration `env:"APP_CACHE_TTL, default=30s"`
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. It panics on invalid configuration.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith is Load with an explicit lookuper, for tests.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TrustedNetworks parses TrustedProxies. A bare IP is treated as a single
// host range.
func (c *Config) TrustedNetworks() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if raw == "" {
			continue
		}
		if ip := net.ParseIP(raw); ip != nil {
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid range %q", raw)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RateLimit.Max < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must not be negative")
	}
	if c.RateLimit.Max > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.Redis.Timeout <= 0 {
		return fmt.Errorf("REDIS_TIMEOUT must be positive")
	}
	if _, err := c.TrustedNetworks(); err != nil {
		return err
	}
	if c.Activity.Workers <= 0 {
		return fmt.Errorf("ACTIVITY_WORKERS must be positive")
	}
	return nil
}
