package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Service ServiceConfig `yaml:"service"`
	HTTP    HTTPConfig    `yaml:"http"`
	Cache   CacheConfig   `yaml:"cache"`
	Scanner ScannerConfig `yaml:"scanner"`
	Output  OutputConfig  `yaml:"output"`
}

// ServiceConfig selects and configures the remote classification service
type ServiceConfig struct {
	// BaseURL of the dedicated classification service
	BaseURL string `yaml:"base_url"`

	// Provider is "service" (the dedicated endpoints) or "openai"
	// (an OpenAI-compatible endpoint standing in for them)
	Provider string `yaml:"provider"`

	// APIKey and Model apply to the openai provider only
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// Timeout per remote call
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the page fetcher
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`

	// Proxy URLs override the HTTP_PROXY/HTTPS_PROXY environment
	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
}

// CacheConfig configures the decision cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// ScannerConfig holds scanner-wide tunables that are not per-host
type ScannerConfig struct {
	// BatchSize caps items per analyze-batch call
	BatchSize int `yaml:"batch_size"`

	// MaintainerInterval is the period of the mitigation sweep
	MaintainerInterval time.Duration `yaml:"maintainer_interval"`

	// ImageRatePerSecond paces image-classifier calls per host
	ImageRatePerSecond float64 `yaml:"image_rate_per_second"`
	ImageRateBurst     int     `yaml:"image_rate_burst"`

	// RevealOnAcknowledge removes the mitigation when the user dismisses
	// the explanation. Off by default: the shield stays up.
	RevealOnAcknowledge bool `yaml:"reveal_on_acknowledge"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:  "http://localhost:8000",
			Provider: "service",
			Timeout:  30 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:      2 * time.Minute,
			UserAgent:    "PageGuard/0.1 (+https://github.com/pageguard/pageguard)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Scanner: ScannerConfig{
			BatchSize:          50,
			MaintainerInterval: 3 * time.Second,
			ImageRatePerSecond: 2,
			ImageRateBurst:     4,
		},
		Output: OutputConfig{},
	}
}
