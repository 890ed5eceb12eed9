package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zsiec/nalforge/internal/decoder"
	"github.com/zsiec/nalforge/internal/encoder"
	"github.com/zsiec/nalforge/internal/film"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/vidgen"
)

func (a *application) randomizeCommand() *cli.Command {
	flags := append(outputFlags(), filmFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Annex-B stream whose slices are redrawn",
		},
		&cli.IntFlag{
			Name:  "slice-idx",
			Usage: "index of the slice to redraw",
		},
		&cli.BoolFlag{
			Name:  "all-slices",
			Usage: "redraw every slice",
		},
		&cli.BoolFlag{
			Name:  "randomize-slice-header",
			Usage: "also redraw the slice header and NALU header, not just slice data",
		},
	)

	return &cli.Command{
		Name:   "randomize",
		Usage:  "Decode an Annex-B stream, redraw slices and encode it again",
		Flags:  flags,
		Action: a.runRandomize,
	}
}

func (a *application) runRandomize(ctx context.Context, cmd *cli.Command) error {
	rt, err := a.setup(cmd)
	if err != nil {
		return err
	}
	cfg := rt.cfg
	applyFilmFlags(cmd, &cfg.Film)

	ctx, sessionID := logger.SessionContext(ctx, rt.log)
	log := logger.FromContext(ctx)
	log.WithFields(startupFields(cmd)).WithField("input", cmd.String("input")).Info("Starting randomize")

	data, err := readInput(cmd.String("input"))
	if err != nil {
		return err
	}
	stream, err := decoder.New(logger.WithComponent(rt.log, "decoder")).Decode(data)
	if err != nil {
		return err
	}

	store, closeStore, err := rt.filmStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	src, err := film.Open(ctx, &cfg.Film, store,
		film.WithLogger(logger.WithComponent(rt.log, "film")),
		film.WithSessionID(sessionID),
	)
	if err != nil {
		return err
	}

	opts := vidgen.RandomizeOptions{
		SliceIndex: int(cmd.Int("slice-idx")),
		AllSlices:  cmd.Bool("all-slices"),
		Header:     cmd.Bool("randomize-slice-header"),
	}
	changed, err := vidgen.New(cfg.Generator, src, logger.WithComponent(rt.log, "vidgen")).Randomize(stream, opts)
	if err != nil {
		return err
	}

	res, err := encoder.New(rt.encoderOptions()).Encode(stream)
	if err != nil {
		return err
	}

	out, err := rt.writeOutputs(ctx, stream, res)
	if err != nil {
		return err
	}

	filmKey, err := film.Save(ctx, &cfg.Film, store, src)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"seed":     src.Seed(),
		"mode":     src.Mode().String(),
		"slices":   changed,
		"bytes":    len(res.AnnexB),
		"output":   out.AnnexB,
		"film_key": filmKey,
	}).Info("Randomize complete")

	printSummary(a.stdout, summary{
		Title:     "randomize",
		SessionID: sessionID,
		Seed:      src.Seed(),
		Mode:      src.Mode().String(),
		FilmKey:   filmKey,
		FilmBytes: len(src.Film()),
		Input:     cmd.String("input"),
		Changed:   changed,
		Stats:     res.Stats,
		Outputs:   out,
	})
	return nil
}
