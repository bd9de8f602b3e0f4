package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/brakken/rconctl/internal/config"
	"github.com/brakken/rconctl/internal/rcon"
)

var errNoTarget = errors.New("no target: pass --target NAME or --host/--port/--password")

// cliFile is the slice of the shared config file the CLI reads. The
// gateway sections are ignored here.
type cliFile struct {
	Targets []config.Target `toml:"targets"`
}

func loadTargets(path string) ([]config.Target, error) {
	var raw cliFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if !meta.IsDefined("targets") {
		return nil, fmt.Errorf("config %s defines no targets", path)
	}
	return raw.Targets, nil
}

// resolveTarget builds the effective target: the named config entry,
// or an ad-hoc one from --host, with set flags winning either way.
func resolveTarget(cmd *cobra.Command) (config.Target, error) {
	flags := cmd.Flags()
	name, _ := flags.GetString("target")
	host, _ := flags.GetString("host")

	var target config.Target
	switch {
	case name != "":
		path, _ := flags.GetString("config")
		targets, err := loadTargets(path)
		if err != nil {
			return config.Target{}, err
		}
		found := false
		for _, t := range targets {
			if t.Name == name {
				target = t
				found = true
				break
			}
		}
		if !found {
			return config.Target{}, fmt.Errorf("target %q not in config", name)
		}
	case host != "":
		target = config.Target{Name: "adhoc"}
	default:
		return config.Target{}, errNoTarget
	}

	if flags.Changed("host") {
		target.Host = host
	}
	if flags.Changed("port") {
		target.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("password") {
		target.Password, _ = flags.GetString("password")
	}
	if flags.Changed("network") {
		target.Network, _ = flags.GetString("network")
	}
	if flags.Changed("no-challenge") {
		target.DisableChallenge, _ = flags.GetBool("no-challenge")
	}
	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		target.ExecTimeout = d.String()
	}

	if target.Network == "" {
		target.Network = rcon.NetworkTCP
	}
	if err := target.Validate(); err != nil {
		return config.Target{}, err
	}
	return target, nil
}

// awaitAuth drains notifications until the handshake settles one way
// or the other.
func awaitAuth(client *rcon.Client, timeout time.Duration) error {
	if client.Authenticated() {
		return nil
	}
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-client.Events():
			switch ev.Kind {
			case rcon.EventAuth:
				return nil
			case rcon.EventError:
				if errors.Is(ev.Err, rcon.ErrAuthFailed) {
					return ev.Err
				}
			case rcon.EventEnd:
				return rcon.ErrConnectionClosed
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for authentication")
		}
	}
}

func commandLine(args []string) string {
	return strings.Join(args, " ")
}
