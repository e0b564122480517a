package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casevault/cmd/app/commands"
	"github.com/allisson/casevault/internal/app"
	"github.com/allisson/casevault/internal/config"
)

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "verify-audit-logs",
			Usage: "Verify the audit log hash chain",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "start-date",
					Aliases: []string{"s"},
					Usage:   "Start date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format (default: beginning)",
				},
				&cli.StringFlag{
					Name:    "end-date",
					Aliases: []string{"e"},
					Usage:   "End date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format (default: now)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogger, err := container.AuditLogger(ctx)
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditLogs(
					ctx,
					auditLogger,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("start-date"),
					cmd.String("end-date"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-audit-logs",
			Usage: "List audit log entries, newest first",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "resource-type", Usage: "Only entries for this resource type"},
				&cli.StringFlag{Name: "resource-id", Usage: "Only entries for this resource id"},
				&cli.StringFlag{Name: "action", Usage: "Only entries with this action"},
				&cli.StringFlag{Name: "success", Usage: "Only successful ('true') or failed ('false') entries"},
				&cli.StringFlag{Name: "start-date", Aliases: []string{"s"}, Usage: "Entries at or after this date"},
				&cli.StringFlag{Name: "end-date", Aliases: []string{"e"}, Usage: "Entries before this date"},
				&cli.IntFlag{Name: "offset", Value: 0, Usage: "Entries to skip"},
				&cli.IntFlag{Name: "limit", Value: 50, Usage: "Maximum entries to print"},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogger, err := container.AuditLogger(ctx)
				if err != nil {
					return err
				}

				return commands.RunListAuditLogs(
					ctx,
					auditLogger,
					commands.DefaultIO().Writer,
					commands.ListAuditLogsParams{
						ResourceType: cmd.String("resource-type"),
						ResourceID:   cmd.String("resource-id"),
						Action:       cmd.String("action"),
						Success:      cmd.String("success"),
						StartDate:    cmd.String("start-date"),
						EndDate:      cmd.String("end-date"),
						Offset:       int(cmd.Int("offset")),
						Limit:        int(cmd.Int("limit")),
					},
					cmd.String("format"),
				)
			},
		},
	}
}
