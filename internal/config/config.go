// internal/config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Placeholder addresses that must be replaced before the server will bind.
// The upstream configuration shipped with one of these baked in.
var placeholderAddrs = map[string]bool{
	"YOURADDRESS": true,
	"YOURADRESS":  true,
	"changeme":    true,
}

// Config holds everything the process needs to start. Values come from, in
// increasing precedence: built-in defaults, a YAML file, environment
// variables, CLI flags.
type Config struct {
	Address  string `yaml:"address"`
	Port     int    `yaml:"port"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	Root     string `yaml:"root"`

	// MaxConns is the number of connections handled concurrently. 1 keeps
	// the original one-at-a-time behavior; values above 1 opt into a
	// bounded worker pool; values below 1 remove the bound.
	MaxConns int `yaml:"max_conns"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`

	NoCache bool `yaml:"no_cache"`
	DevCert bool `yaml:"dev_cert"`

	ACMEHosts    []string `yaml:"acme_hosts"`
	ACMECacheDir string   `yaml:"acme_cache_dir"`

	Signaling   bool       `yaml:"signaling"`
	STUNServers []string   `yaml:"stun_servers"`
	TURN        TURNConfig `yaml:"turn"`
}

// TURNConfig carries optional relay server credentials for signaling peers.
type TURNConfig struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Credential string `yaml:"credential"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Address:           "127.0.0.1",
		Port:              8000,
		CertFile:          "cert.pem",
		KeyFile:           "key.pem",
		Root:              ".",
		MaxConns:          1,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ACMECacheDir:      ".acme-cache",
		STUNServers:       []string{"stun:stun.l.google.com:19302"},
	}
}

// LoadFile merges the YAML file at path into c. Only keys present in the
// file are overwritten.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from HTTPS_* environment variables.
func (c *Config) ApplyEnv() {
	c.Address = getEnv("HTTPS_ADDRESS", c.Address)
	c.Port = getIntEnv("HTTPS_PORT", c.Port)
	c.CertFile = getEnv("HTTPS_CERT_FILE", c.CertFile)
	c.KeyFile = getEnv("HTTPS_KEY_FILE", c.KeyFile)
	c.Root = getEnv("HTTPS_ROOT", c.Root)
	c.MaxConns = getIntEnv("HTTPS_MAX_CONNS", c.MaxConns)
	c.ReadHeaderTimeout = getDurationEnv("HTTPS_READ_HEADER_TIMEOUT", c.ReadHeaderTimeout)
	c.IdleTimeout = getDurationEnv("HTTPS_IDLE_TIMEOUT", c.IdleTimeout)
	c.NoCache = getBoolEnv("HTTPS_NO_CACHE", c.NoCache)
	c.DevCert = getBoolEnv("HTTPS_DEV_CERT", c.DevCert)
	c.ACMEHosts = getSliceEnv("HTTPS_ACME_HOSTS", c.ACMEHosts)
	c.ACMECacheDir = getEnv("HTTPS_ACME_CACHE_DIR", c.ACMECacheDir)
	c.Signaling = getBoolEnv("HTTPS_SIGNALING", c.Signaling)
	c.STUNServers = getSliceEnv("HTTPS_STUN_SERVERS", c.STUNServers)
	c.TURN.URL = getEnv("HTTPS_TURN_URL", c.TURN.URL)
	c.TURN.Username = getEnv("HTTPS_TURN_USERNAME", c.TURN.Username)
	c.TURN.Credential = getEnv("HTTPS_TURN_CREDENTIAL", c.TURN.Credential)
}

// Validate rejects configurations that must not reach the bind call.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("bind address is not set")
	}
	if placeholderAddrs[c.Address] {
		return fmt.Errorf("bind address %q is a placeholder; set a real address such as 0.0.0.0 or 127.0.0.1", c.Address)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if c.Root == "" {
		return fmt.Errorf("root directory is not set")
	}
	if len(c.ACMEHosts) > 0 && c.DevCert {
		return fmt.Errorf("acme hosts and dev certificate are mutually exclusive")
	}
	return nil
}

// ListenAddr returns the host:port string to bind.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return fallback
}
