// Command nalforge generates, randomizes, re-encodes and inspects H.264
// Annex-B streams built from random syntax models.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	err := app.command().Run(ctx, os.Args)

	log := app.log
	if log == nil {
		log = logrus.StandardLogger()
	}
	app.writeMetrics()
	os.Exit(apperrors.NewReporter(log).Report(err))
}

// application holds what commands share once the configuration is loaded.
type application struct {
	log    *logrus.Logger
	rt     *runtime
	stdout io.Writer
}

func newApp() *application {
	return &application{stdout: os.Stdout}
}

func (a *application) command() *cli.Command {
	info := version.GetInfo()
	return &cli.Command{
		Name:    version.Name,
		Usage:   "H.264 syntax bitstream synthesizer",
		Version: info.CLI(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override logging.level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			a.generateCommand(),
			a.encodeCommand(),
			a.randomizeCommand(),
			a.synthesizeCommand(),
			a.inspectCommand(),
		},
	}
}
