package membership

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a membership",
		ArgsUsage: "<id>",
		Action: func(ctx *cli.Context) error {
			id, err := requireID(ctx)
			if err != nil {
				return err
			}
			return withApp(ctx, func(c context.Context, app *setup.App) error {
				if err := app.Service.DeleteMembership(c, domain.MembershipID(id)); err != nil {
					return errors.WithStack(describeFor(id, err))
				}
				return checkPersisted(app)
			})
		},
	}
}
