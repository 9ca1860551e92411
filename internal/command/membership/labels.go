package membership

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

func labelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "labels",
		Usage: "Print category and interface labels for the selected language",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagJSON, Usage: "Print labels as JSON"},
		},
		Action: func(ctx *cli.Context) error {
			labels := labelsFor(ctx)
			w := ctx.App.Writer

			if ctx.Bool(flagJSON) {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return errors.WithStack(enc.Encode(map[string]any{
					"locale":     labels.Locale.String(),
					"categories": labels.Categories(),
					"messages":   labels.Messages(),
				}))
			}

			fmt.Fprintf(w, "locale: %s\n", labels.Locale)
			for _, t := range domain.MembershipTypes() {
				fmt.Fprintf(w, "%s: %s\n", t, labels.Category(t))
			}
			messages := labels.Messages()
			keys := make([]string, 0, len(messages))
			for k := range messages {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%s: %s\n", k, messages[k])
			}
			return nil
		},
	}
}
