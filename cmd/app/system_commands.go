package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casevault/cmd/app/commands"
	"github.com/allisson/casevault/internal/app"
	"github.com/allisson/casevault/internal/config"
	"github.com/allisson/casevault/internal/database"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "serve",
			Usage: "Load the encryption key and start the loopback admin server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "direction",
					Aliases: []string{"d"},
					Value:   database.MigrateUp,
					Usage:   "Migration direction: 'up' or 'down'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				db, err := container.DB()
				if err != nil {
					return err
				}

				return commands.RunMigrations(container.Logger(), db, cmd.String("direction"))
			},
		},
	}
}
