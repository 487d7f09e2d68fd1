package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Discovery   DiscoveryConfig   `toml:"discovery"`
	YTDLP       YTDLPConfig       `toml:"ytdlp"`
}

// CredentialsConfig contains service-specific connection settings.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig points at the ytmusicapi proxy.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
}

// DatabaseConfig contains database connection settings for the request history store.
type DatabaseConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server and session lifecycle settings.
type ServerConfig struct {
	Host                 string `toml:"host"`
	Port                 int    `toml:"port"`
	KeepAliveSeconds     int    `toml:"keep_alive_seconds"`
	SessionTTLSeconds    int    `toml:"session_ttl_seconds"`
	SweepIntervalSeconds int    `toml:"sweep_interval_seconds"`
}

// DiscoveryConfig tunes the related-songs pipeline.
type DiscoveryConfig struct {
	MaxRelated        int     `toml:"max_related"`
	Concurrency       int     `toml:"concurrency"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// YTDLPConfig configures the yt-dlp media resolver.
type YTDLPConfig struct {
	Binary string `toml:"binary"`
	Format string `toml:"format"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// KeepAlive is the idle interval after which the stream relay emits a keep-alive frame.
func (s ServerConfig) KeepAlive() time.Duration {
	return time.Duration(s.KeepAliveSeconds) * time.Second
}

// SessionTTL is how long an undrained session may live before it is swept.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLSeconds) * time.Second
}

// SweepInterval is how often abandoned sessions are swept.
func (s ServerConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port must be between 1 and 65535", ErrInvalidConfig)
	case c.Server.KeepAliveSeconds <= 0:
		return fmt.Errorf("%w: server.keep_alive_seconds must be positive", ErrInvalidConfig)
	case c.Server.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: server.session_ttl_seconds must be positive", ErrInvalidConfig)
	case c.Discovery.MaxRelated <= 0:
		return fmt.Errorf("%w: discovery.max_related must be positive", ErrInvalidConfig)
	case c.Discovery.Concurrency <= 0:
		return fmt.Errorf("%w: discovery.concurrency must be positive", ErrInvalidConfig)
	case c.Credentials.YouTube.ProxyURL == "":
		return fmt.Errorf("%w: credentials.youtube.proxy_url is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
