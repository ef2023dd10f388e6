package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Auth struct {
		BotToken        string        `yaml:"bot_token"`
		SessionSecret   string        `yaml:"session_secret"`
		SessionTTL      time.Duration `yaml:"session_ttl"`
		AdminTelegramID string        `yaml:"admin_telegram_id"`
		SecureCookie    bool          `yaml:"secure_cookie"`
		LoginPath       string        `yaml:"login_path"`
		HomePath        string        `yaml:"home_path"`
	} `yaml:"auth"`

	Player struct {
		VdoCipherAPISecret string        `yaml:"vdocipher_api_secret"`
		VdoCipherBaseURL   string        `yaml:"vdocipher_base_url"`
		OTPTTL             time.Duration `yaml:"otp_ttl"`
	} `yaml:"player"`

	Catalog struct {
		ListCacheTTL time.Duration `yaml:"list_cache_ttl"`
	} `yaml:"catalog"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		JaegerURL  string  `yaml:"jaeger_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Auth
	if c.Auth.BotToken == "" {
		return fmt.Errorf("auth.bot_token must not be empty")
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("auth.session_secret must not be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be > 0")
	}
	if c.Auth.AdminTelegramID == "" {
		return fmt.Errorf("auth.admin_telegram_id must not be empty")
	}
	if c.Auth.LoginPath == "" {
		return fmt.Errorf("auth.login_path must not be empty")
	}
	if c.Auth.HomePath == "" {
		return fmt.Errorf("auth.home_path must not be empty")
	}

	// Player
	if c.Player.OTPTTL <= 0 {
		return fmt.Errorf("player.otp_ttl must be > 0")
	}
	if c.Player.VdoCipherBaseURL == "" {
		return fmt.Errorf("player.vdocipher_base_url must not be empty")
	}

	// Catalog
	if c.Catalog.ListCacheTTL <= 0 {
		return fmt.Errorf("catalog.list_cache_ttl must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in (0, 1] when tracing.enabled=true")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Auth.BotToken = ""
	cfg.Auth.SessionSecret = "change-me-in-production"
	cfg.Auth.SessionTTL = 7 * 24 * time.Hour // 7 days
	cfg.Auth.AdminTelegramID = ""
	cfg.Auth.SecureCookie = false
	cfg.Auth.LoginPath = "/"
	cfg.Auth.HomePath = "/dashboard"

	cfg.Player.VdoCipherBaseURL = "https://dev.vdocipher.com/api"
	cfg.Player.OTPTTL = 5 * time.Minute

	cfg.Catalog.ListCacheTTL = 30 * time.Second

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("STREAMGATE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("STREAMGATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if token := os.Getenv("STREAMGATE_BOT_TOKEN"); token != "" {
		c.Auth.BotToken = token
	}
	if secret := os.Getenv("STREAMGATE_SESSION_SECRET"); secret != "" {
		c.Auth.SessionSecret = secret
	}
	if admin := os.Getenv("STREAMGATE_ADMIN_TELEGRAM_ID"); admin != "" {
		c.Auth.AdminTelegramID = admin
	}
	if secret := os.Getenv("STREAMGATE_VDOCIPHER_API_SECRET"); secret != "" {
		c.Player.VdoCipherAPISecret = secret
	}
	if addr := os.Getenv("STREAMGATE_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
}
