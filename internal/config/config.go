// Package config loads and validates the shared rconctl configuration
// file: the RCON targets plus the gateway's listener settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/brakken/rconctl/internal/rcon"
)

var ErrInvalid = errors.New("config: invalid")

// File is the full on-disk configuration.
type File struct {
	Logging Logging  `toml:"logging"`
	Gateway Gateway  `toml:"gateway"`
	Targets []Target `toml:"targets"`
}

// Logging overrides the binary's default log posture.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Gateway configures the rcongate daemon.
type Gateway struct {
	ListenAddr   string   `toml:"listen_addr"`
	APIToken     string   `toml:"api_token"`
	CORSOrigins  []string `toml:"cors_origins"`
	HistoryLimit int      `toml:"history_limit"`
	TLSCertFile  string   `toml:"tls_cert_file"`
	TLSKeyFile   string   `toml:"tls_key_file"`
}

// Target names one RCON endpoint.
type Target struct {
	Name             string `toml:"name"`
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	Password         string `toml:"password"`
	Network          string `toml:"network"`
	DisableChallenge bool   `toml:"disable_challenge"`
	ExecTimeout      string `toml:"exec_timeout"`
}

const (
	DefaultListenAddr   = ":8420"
	DefaultHistoryLimit = 256
	DefaultExecTimeout  = 10 * time.Second
)

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	var cfg File
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return File{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

func (f *File) applyDefaults() {
	if f.Gateway.ListenAddr == "" {
		f.Gateway.ListenAddr = DefaultListenAddr
	}
	if f.Gateway.HistoryLimit <= 0 {
		f.Gateway.HistoryLimit = DefaultHistoryLimit
	}
	for i := range f.Targets {
		if f.Targets[i].Network == "" {
			f.Targets[i].Network = rcon.NetworkTCP
		}
	}
}

func (f File) Validate() error {
	if (f.Gateway.TLSCertFile == "") != (f.Gateway.TLSKeyFile == "") {
		return fmt.Errorf("%w: gateway tls_cert_file and tls_key_file must be set together", ErrInvalid)
	}
	seen := make(map[string]struct{}, len(f.Targets))
	for i, target := range f.Targets {
		if err := target.Validate(); err != nil {
			return fmt.Errorf("target[%d]: %w", i, err)
		}
		if _, dup := seen[target.Name]; dup {
			return fmt.Errorf("%w: duplicate target name %q", ErrInvalid, target.Name)
		}
		seen[target.Name] = struct{}{}
	}
	return nil
}

// Target lookup by name.
func (f File) Target(name string) (Target, bool) {
	for _, target := range f.Targets {
		if target.Name == name {
			return target, true
		}
	}
	return Target{}, false
}

func (t Target) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(t.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalid)
	}
	if t.Port <= 0 || t.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, t.Port)
	}
	switch t.Network {
	case rcon.NetworkTCP, rcon.NetworkUDP:
	default:
		return fmt.Errorf("%w: network %q", ErrInvalid, t.Network)
	}
	if _, err := t.ExecDeadline(); err != nil {
		return err
	}
	return nil
}

// ExecDeadline parses the per-target command timeout, falling back to
// the package default when unset.
func (t Target) ExecDeadline() (time.Duration, error) {
	raw := strings.TrimSpace(t.ExecTimeout)
	if raw == "" {
		return DefaultExecTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: exec_timeout %q: %v", ErrInvalid, t.ExecTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: exec_timeout %q must be positive", ErrInvalid, t.ExecTimeout)
	}
	return d, nil
}
