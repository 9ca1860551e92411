package membership

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/i18n"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List memberships, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagQuery, Aliases: []string{"q"}, Usage: "Search name, number and notes"},
			&cli.StringFlag{Name: flagType, Aliases: []string{"t"}, Usage: "all, airline, hotel, cruise or other", Value: "all"},
			&cli.BoolFlag{Name: flagJSON, Usage: "Print the records as a JSON array"},
		},
		Action: func(ctx *cli.Context) error {
			return withApp(ctx, func(c context.Context, app *setup.App) error {
				ms, err := app.Service.SearchMemberships(c, ctx.String(flagQuery), ctx.String(flagType))
				if err != nil {
					return errors.WithStack(describe(err))
				}
				if ctx.Bool(flagJSON) {
					return printJSON(ctx.App.Writer, ms)
				}
				labels := labelsFor(ctx)
				if len(ms) == 0 {
					key := i18n.MsgNoResults
					if len(app.Store.List(c)) == 0 {
						key = i18n.MsgEmptyState
					}
					fmt.Fprintln(ctx.App.Writer, labels.Message(key))
					return nil
				}
				return printTable(ctx.App.Writer, labels, ms)
			})
		},
	}
}

func printTable(w io.Writer, labels i18n.Labels, ms []domain.Membership) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\t%s\t%s\t%s\t%s\n",
		labels.Message(i18n.MsgName),
		labels.Message(i18n.MsgNumber),
		labels.Message(i18n.MsgType),
		labels.Message(i18n.MsgTier),
		labels.Message(i18n.MsgCreatedAt),
	)
	for _, m := range ms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Name, m.Number, labels.Category(m.Type), deref(m.Tier), m.CreatedAt.Local().Format(time.DateTime))
	}
	return errors.WithStack(tw.Flush())
}

func printJSON(w io.Writer, ms []domain.Membership) error {
	b, err := memberships.Encode(ms)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return errors.WithStack(err)
}

func deref(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
