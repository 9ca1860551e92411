package membership

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Change fields of a membership; an empty value clears tier, website or notes",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagName, Aliases: []string{"n"}, Usage: "Program name"},
			&cli.StringFlag{Name: flagNumber, Aliases: []string{"N"}, Usage: "Membership number"},
			&cli.StringFlag{Name: flagType, Aliases: []string{"t"}, Usage: "airline, hotel, cruise or other"},
			&cli.StringFlag{Name: flagTier, Usage: "Status tier"},
			&cli.StringFlag{Name: flagWebsite, Usage: "Program website"},
			&cli.StringFlag{Name: flagNotes, Usage: "Free-form notes"},
		},
		Action: func(ctx *cli.Context) error {
			id, err := requireID(ctx)
			if err != nil {
				return err
			}

			in := memberships.UpdateMembershipInput{
				Name:    optionalFlag(ctx, flagName),
				Number:  optionalFlag(ctx, flagNumber),
				Type:    optionalFlag(ctx, flagType),
				Tier:    optionalFlag(ctx, flagTier),
				Website: optionalFlag(ctx, flagWebsite),
				Notes:   optionalFlag(ctx, flagNotes),
			}

			return withApp(ctx, func(c context.Context, app *setup.App) error {
				m, err := app.Service.UpdateMembership(c, domain.MembershipID(id), in)
				if err != nil {
					return errors.WithStack(describeFor(id, err))
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

func optionalFlag(ctx *cli.Context, name string) memberships.Optional[string] {
	if !ctx.IsSet(name) {
		return memberships.Unspecified[string]()
	}
	return memberships.Some(ctx.String(name))
}
