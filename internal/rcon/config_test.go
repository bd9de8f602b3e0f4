package rcon

import (
	"errors"
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Host: "game.test", Port: 27015}.WithDefaults()
	if cfg.Network != NetworkTCP {
		t.Fatalf("network = %q, want tcp", cfg.Network)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Fatalf("dial timeout = %v", cfg.DialTimeout)
	}
	if cfg.EventBuffer != 64 {
		t.Fatalf("event buffer = %d", cfg.EventBuffer)
	}
	if cfg.Logger == nil {
		t.Fatal("logger not defaulted")
	}
}

func TestConfigWithDefaultsKeepsSetValues(t *testing.T) {
	cfg := Config{
		Host:        "game.test",
		Port:        28960,
		Network:     NetworkUDP,
		DialTimeout: time.Second,
		EventBuffer: 8,
	}.WithDefaults()
	if cfg.Network != NetworkUDP || cfg.DialTimeout != time.Second || cfg.EventBuffer != 8 {
		t.Fatalf("defaults clobbered set values: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"tcp", Config{Host: "h", Port: 27015, Network: NetworkTCP}, true},
		{"udp", Config{Host: "h", Port: 28960, Network: NetworkUDP}, true},
		{"missing host", Config{Port: 27015, Network: NetworkTCP}, false},
		{"zero port", Config{Host: "h", Network: NetworkTCP}, false},
		{"port overflow", Config{Host: "h", Port: 70000, Network: NetworkTCP}, false},
		{"bad network", Config{Host: "h", Port: 27015, Network: "icmp"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := Config{Host: "10.0.0.5", Port: 27015}
	if got := cfg.Addr(); got != "10.0.0.5:27015" {
		t.Fatalf("addr = %q", got)
	}
}

func TestEventKindVocabulary(t *testing.T) {
	want := map[EventKind]string{
		EventConnect:  "connect",
		EventAuth:     "auth",
		EventResponse: "response",
		EventServer:   "server",
		EventError:    "error",
		EventEnd:      "end",
	}
	for kind, name := range want {
		if kind.String() != name {
			t.Fatalf("%d.String() = %q, want %q", kind, kind.String(), name)
		}
	}
	if EventKind(0).String() != "unknown" {
		t.Fatalf("zero kind = %q", EventKind(0).String())
	}
}
