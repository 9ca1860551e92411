package membership

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/command"
	platformclock "github.com/Overland-East-Bay/membership-tracker/internal/platform/clock"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/config"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/i18n"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

const (
	flagName    = "name"
	flagNumber  = "number"
	flagType    = "type"
	flagTier    = "tier"
	flagWebsite = "website"
	flagNotes   = "notes"
	flagQuery   = "query"
	flagJSON    = "json"
)

// ErrPersistence is returned when a mutation was applied in memory but could
// not be written to storage.
var ErrPersistence = errors.New("change could not be saved")

// Commands returns every membership subcommand.
func Commands() []*cli.Command {
	return []*cli.Command{
		addCommand(),
		listCommand(),
		showCommand(),
		updateCommand(),
		deleteCommand(),
		labelsCommand(),
	}
}

// withApp opens storage from the environment configuration, runs fn and
// releases storage afterwards.
func withApp(ctx *cli.Context, fn func(ctx context.Context, app *setup.App) error) error {
	conf, err := config.Parse()
	if err != nil {
		return errors.Wrap(err, "could not load configuration")
	}

	app, err := setup.New(ctx.Context, conf, slog.Default(), platformclock.NewSystemClock())
	if err != nil {
		return errors.Wrap(err, "could not open membership storage")
	}
	defer app.Close()

	return fn(ctx.Context, app)
}

// checkPersisted reports a failed write of the last mutation.
func checkPersisted(app *setup.App) error {
	if err := app.Store.PersistenceError(); err != nil {
		return errors.Wrapf(ErrPersistence, "%v", err)
	}
	return nil
}

func labelsFor(ctx *cli.Context) i18n.Labels {
	return i18n.Negotiate(ctx.String(command.FlagLang))
}

func requireID(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", errors.Errorf("expected exactly one membership id, got %d arguments", ctx.NArg())
	}
	return ctx.Args().First(), nil
}
