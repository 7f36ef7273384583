// Package config loads and validates couchplay.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "couchplay.json"

	// DefaultPort is the default listen port.
	DefaultPort = 8420

	// DefaultTickRate is the default lobby tick rate in ticks per second.
	DefaultTickRate = 60

	// DefaultHoldInterval is how long player inputs are held between polls.
	DefaultHoldInterval = 100 * time.Millisecond
)

// ErrNotFound is returned when no couchplay.json exists at the given path.
var ErrNotFound = errors.New("config: couchplay.json not found")

// Config represents the complete couchplay.json configuration.
type Config struct {
	// Name is the server name shown to controllers.
	Name string `json:"name,omitempty"`

	// Port is the listen port.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to. Empty means all interfaces.
	Host string `json:"host,omitempty"`

	// TLS contains the TLS identity used for public connections.
	TLS TLSConfig `json:"tls,omitempty"`

	// Game contains game loop settings.
	Game GameConfig `json:"game,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// Static is the directory serving the controller web page. Empty
	// disables static serving.
	Static string `json:"static,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// TLSConfig contains the server's TLS identity. When CertFile is empty the
// server speaks plaintext to everyone; when set, connections from public
// addresses are encrypted while private-network connections stay plaintext.
type TLSConfig struct {
	// CertFile is the path to a PKCS#12 identity file.
	CertFile string `json:"certFile,omitempty"`

	// Password decrypts the identity file.
	Password string `json:"password,omitempty"`
}

// GameConfig contains game loop settings.
type GameConfig struct {
	// TickRate is the lobby loop rate in ticks per second.
	TickRate int `json:"tickRate,omitempty"`

	// HoldIntervalMS is the input hold interval in milliseconds. Player
	// inputs are released to the game at most once per interval.
	HoldIntervalMS int `json:"holdIntervalMs,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level,omitempty"`

	// File is the path of a rotating log file. Empty logs to stderr.
	File string `json:"file,omitempty"`

	// MaxSizeMB caps the log file size before rotation.
	MaxSizeMB int `json:"maxSizeMb,omitempty"`

	// MaxBackups caps how many rotated files are kept.
	MaxBackups int `json:"maxBackups,omitempty"`
}

// New returns a Config with every field at its default.
func New() *Config {
	return &Config{
		Name: "couchplay",
		Port: DefaultPort,
		Game: GameConfig{
			TickRate:       DefaultTickRate,
			HoldIntervalMS: int(DefaultHoldInterval / time.Millisecond),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// couchplay.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config: no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Game.TickRate == 0 {
		c.Game.TickRate = DefaultTickRate
	}
	if c.Game.HoldIntervalMS == 0 {
		c.Game.HoldIntervalMS = int(DefaultHoldInterval / time.Millisecond)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.Game.TickRate < 1 || c.Game.TickRate > 1000 {
		return fmt.Errorf("config: tick rate %d out of range", c.Game.TickRate)
	}
	if c.Game.HoldIntervalMS < 1 {
		return fmt.Errorf("config: hold interval %dms out of range", c.Game.HoldIntervalMS)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if c.TLS.CertFile != "" {
		if _, err := os.Stat(c.TLS.CertFile); err != nil {
			return fmt.Errorf("config: tls cert file: %w", err)
		}
	}
	return nil
}

// Warnings returns non-fatal configuration oddities worth logging at
// startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.TLS.Password != "" && c.TLS.CertFile == "" {
		out = append(out, "tls password set but no cert file; TLS stays disabled")
	}
	if c.Game.TickRate > 240 {
		out = append(out, fmt.Sprintf("tick rate %d is unusually high", c.Game.TickRate))
	}
	if c.Game.HoldIntervalMS < 16 {
		out = append(out, fmt.Sprintf("hold interval %dms is shorter than a 60Hz frame", c.Game.HoldIntervalMS))
	}
	return out
}

// Address returns the host:port the server binds.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HoldInterval returns the input hold interval as a duration.
func (c *Config) HoldInterval() time.Duration {
	return time.Duration(c.Game.HoldIntervalMS) * time.Millisecond
}

// Exists reports whether a couchplay.json is present in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
