package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brakken/rconctl/internal/config"
)

func targetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Manage configured targets",
	}
	cmd.AddCommand(targetsListCmd(), targetsInitCmd())
	return cmd
}

func targetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the targets in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			targets, err := loadTargets(path)
			if err != nil {
				return err
			}

			rows := pterm.TableData{{"NAME", "HOST", "PORT", "NETWORK", "CHALLENGE"}}
			for _, t := range targets {
				challenge := "yes"
				if t.Network != "udp" {
					challenge = "-"
				} else if t.DisableChallenge {
					challenge = "no"
				}
				rows = append(rows, []string{
					t.Name, t.Host, strconv.Itoa(t.Port), t.Network, challenge,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func targetsInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			force, _ := cmd.Flags().GetBool("force")
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			pterm.Success.Printfln("wrote %s", path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}
