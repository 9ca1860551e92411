package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/i18n"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one membership",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagJSON, Usage: "Print the record as a JSON array of one"},
		},
		Action: func(ctx *cli.Context) error {
			id, err := requireID(ctx)
			if err != nil {
				return err
			}
			return withApp(ctx, func(c context.Context, app *setup.App) error {
				m, err := app.Service.GetMembership(c, domain.MembershipID(id))
				if err != nil {
					return errors.WithStack(describeFor(id, err))
				}
				if ctx.Bool(flagJSON) {
					return printJSON(ctx.App.Writer, []domain.Membership{m})
				}

				labels := labelsFor(ctx)
				w := ctx.App.Writer
				fmt.Fprintf(w, "ID: %s\n", m.ID)
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgName), m.Name)
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgNumber), m.Number)
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgType), labels.Category(m.Type))
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgTier), deref(m.Tier))
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgWebsite), deref(m.Website))
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgNotes), deref(m.Notes))
				fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgCreatedAt), m.CreatedAt.Format(time.RFC3339))
				if m.UpdatedAt != nil {
					fmt.Fprintf(w, "%s: %s\n", labels.Message(i18n.MsgUpdatedAt), m.UpdatedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}
