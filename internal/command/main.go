package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Overland-East-Bay/membership-tracker/internal/platform/i18n"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/logging"
)

const (
	FlagDebug    = "debug"
	FlagLogLevel = "log-level"
	FlagLang     = "lang"
)

// Main runs the CLI and exits the process with status 1 on error.
func Main(name string, usage string, commands ...*cli.Command) {
	app := NewApp(name, usage, os.Stdout, os.Stderr, commands...)
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// NewApp builds the CLI application. Command output goes to stdout,
// diagnostics and logs to stderr.
func NewApp(name string, usage string, stdout io.Writer, stderr io.Writer, commands ...*cli.Command) *cli.App {
	app := &cli.App{
		Name:      name,
		Usage:     usage,
		Commands:  commands,
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx *cli.Context) error {
			logger := logging.New(stderr, logging.ParseLevel(ctx.String(FlagLogLevel)), logging.FormatText)
			slog.SetDefault(logger)
			return nil
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    FlagDebug,
				Value:   false,
				EnvVars: []string{"MEMBERSHIPS_CLI_DEBUG"},
				Usage:   "Toggle debug mode",
			},
			&cli.StringFlag{
				Name:    FlagLogLevel,
				EnvVars: []string{"MEMBERSHIPS_CLI_LOG_LEVEL"},
				Usage:   "Set logging level",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    FlagLang,
				EnvVars: []string{"MEMBERSHIPS_CLI_LANG"},
				Usage:   "Language for labels (" + supportedLanguages() + ")",
				Value:   "en",
			},
		},
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}

		if !ctx.Bool(FlagDebug) {
			fmt.Fprintf(stderr, "error: %s\n", err.Error())
		} else {
			fmt.Fprintf(stderr, "error: %+v\n", err)
		}
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}

func supportedLanguages() string {
	tags := i18n.Supported()
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}
