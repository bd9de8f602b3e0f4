package config

import "github.com/brakken/rconctl/internal/rcon"

// EngineConfig maps a target entry onto the protocol engine's Config.
// Engine-internal defaults (dial timeout, event buffer) are left to
// rcon.Config.WithDefaults.
func EngineConfig(t Target) rcon.Config {
	return rcon.Config{
		Host:             t.Host,
		Port:             t.Port,
		Password:         t.Password,
		Network:          t.Network,
		DisableChallenge: t.DisableChallenge,
	}
}
