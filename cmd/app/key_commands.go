package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casevault/cmd/app/commands"
	"github.com/allisson/casevault/internal/app"
	"github.com/allisson/casevault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key",
			Usage: "Generate the master encryption key and store it in secure storage",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyManager, err := container.NewUnloadedKeyManager(ctx)
				if err != nil {
					return err
				}

				return commands.RunCreateKey(
					ctx,
					keyManager,
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.EncryptionKeyName,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "key-health",
			Usage: "Load the master key (migrating a legacy key if found) and run its self-test",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyManager, err := container.NewUnloadedKeyManager(ctx)
				if err != nil {
					return err
				}
				defer keyManager.Close()

				return commands.RunKeyHealth(
					ctx,
					keyManager,
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.EncryptionKeyName,
					cmd.String("format"),
				)
			},
		},
	}
}
