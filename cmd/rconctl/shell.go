package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brakken/rconctl/internal/config"
	"github.com/brakken/rconctl/internal/rcon"
)

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive prompt against a target",
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
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}
			defer client.Disconnect()

			if err := awaitAuth(client, deadline); err != nil {
				return err
			}
			pterm.Success.Printfln("authenticated against %s (%s)", client.Addr(), client.Network())
			pterm.Info.Println("type a command, :quit to exit")

			done := make(chan struct{})
			defer close(done)
			go printEvents(client, done)

			return promptLoop(cmd.Context(), client, deadline)
		},
	}
}

// printEvents surfaces asynchronous traffic: unsolicited server
// messages, datagram replies, errors, and the session end.
func printEvents(client *rcon.Client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev := <-client.Events():
			switch ev.Kind {
			case rcon.EventServer:
				pterm.Info.Printfln("[server] %s", ev.Body)
			case rcon.EventResponse:
				// Correlated TCP replies are printed by the prompt
				// loop; only datagram replies arrive solely here.
				if client.Network() == rcon.NetworkUDP && ev.Body != "" {
					pterm.Println(ev.Body)
				}
			case rcon.EventError:
				pterm.Warning.Printfln("%v", ev.Err)
			case rcon.EventEnd:
				pterm.Warning.Println("connection ended")
			}
		}
	}
}

func promptLoop(ctx context.Context, client *rcon.Client, deadline time.Duration) error {
	prompt := pterm.DefaultInteractiveTextInput.WithDefaultText("rcon")
	for {
		line, err := prompt.Show()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ":quit", ":q", "exit":
			return nil
		}

		pending, err := client.Send(line)
		if err != nil {
			if errors.Is(err, rcon.ErrNotConnected) {
				return err
			}
			pterm.Error.Printfln("%v", err)
			continue
		}
		if client.Network() == rcon.NetworkUDP {
			// Datagram replies surface through the event printer.
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, deadline)
		body, err := pending.Wait(waitCtx)
		cancel()
		if err != nil {
			pterm.Error.Printfln("%v", err)
			continue
		}
		if body != "" {
			fmt.Println(body)
		}
	}
}
