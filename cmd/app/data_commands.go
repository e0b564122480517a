package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casevault/cmd/app/commands"
	"github.com/allisson/casevault/internal/app"
	casesDomain "github.com/allisson/casevault/internal/cases/domain"
	"github.com/allisson/casevault/internal/config"
)

func getDataCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "reencrypt-legacy-fields",
			Usage: "Rewrite sensitive fields still stored in the legacy format",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				caseRepo, err := container.CaseRepository(ctx)
				if err != nil {
					return err
				}
				caseNoteRepo, err := container.CaseNoteRepository(ctx)
				if err != nil {
					return err
				}

				return commands.RunReencryptLegacyFields(
					ctx,
					[]commands.NamedReencryptor{
						{EntityType: casesDomain.CaseEntityType, Reencryptor: caseRepo},
						{EntityType: casesDomain.CaseNoteEntityType, Reencryptor: caseNoteRepo},
					},
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
