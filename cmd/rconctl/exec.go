package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brakken/rconctl/internal/config"
	"github.com/brakken/rconctl/internal/rcon"
)

func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec COMMAND...",
		Short: "Run one command against a target and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(cmd)
			if err != nil {
				return err
			}
			deadline, err := target.ExecDeadline()
			if err != nil {
				return err
			}

			client, err := rcon.New(config.EngineConfig(target))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
			defer cancel()

			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Disconnect()

			if err := awaitAuth(client, deadline); err != nil {
				return err
			}

			pending, err := client.Send(commandLine(args))
			if err != nil {
				return err
			}
			body, err := pending.Wait(ctx)
			if err != nil {
				return err
			}
			if body != "" {
				fmt.Println(body)
			}
			return nil
		},
	}
}
