package membership

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a membership",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagName, Aliases: []string{"n"}, Usage: "Program name", Required: true},
			&cli.StringFlag{Name: flagNumber, Aliases: []string{"N"}, Usage: "Membership number", Required: true},
			&cli.StringFlag{Name: flagType, Aliases: []string{"t"}, Usage: "airline, hotel, cruise or other", Value: "airline"},
			&cli.StringFlag{Name: flagTier, Usage: "Status tier"},
			&cli.StringFlag{Name: flagWebsite, Usage: "Program website"},
			&cli.StringFlag{Name: flagNotes, Usage: "Free-form notes"},
		},
		Action: func(ctx *cli.Context) error {
			return withApp(ctx, func(c context.Context, app *setup.App) error {
				m, err := app.Service.CreateMembership(c, memberships.CreateMembershipInput{
					Name:    ctx.String(flagName),
					Number:  ctx.String(flagNumber),
					Type:    ctx.String(flagType),
					Tier:    ctx.String(flagTier),
					Website: ctx.String(flagWebsite),
					Notes:   ctx.String(flagNotes),
				})
				if err != nil {
					return errors.WithStack(describe(err))
				}
				if err := checkPersisted(app); err != nil {
					return err
				}
				fmt.Fprintln(ctx.App.Writer, m.ID)
				return nil
			})
		},
	}
}
