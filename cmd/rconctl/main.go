// Command rconctl is the operator CLI: one-shot command execution, an
// interactive shell, and target/config management.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brakken/rconctl/internal/logging"
)

var version = "dev"

func main() {
	logging.Apply(logging.ProfileInteractive())

	root := &cobra.Command{
		Use:   "rconctl",
		Short: "Remote console client for game servers",
		Long: `rconctl speaks the RCON protocol family to game servers: the
length-prefixed TCP dialect and the challenge/response UDP dialect.

Targets come from a TOML config file or ad-hoc --host/--port flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "rconctl.toml", "path to the configuration file")
	root.PersistentFlags().String("target", "", "configured target name")
	root.PersistentFlags().String("host", "", "ad-hoc server host (overrides the config file)")
	root.PersistentFlags().Int("port", 0, "ad-hoc server port")
	root.PersistentFlags().String("password", "", "ad-hoc server password")
	root.PersistentFlags().String("network", "", "wire dialect: tcp or udp")
	root.PersistentFlags().Bool("no-challenge", false, "skip the UDP challenge handshake")
	root.PersistentFlags().Duration("timeout", 0, "per-command reply timeout")

	root.AddCommand(
		execCmd(),
		shellCmd(),
		targetsCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rconctl: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rconctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("rconctl", version)
		},
	}
}
