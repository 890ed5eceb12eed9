package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zsiec/nalforge/internal/config"
	"github.com/zsiec/nalforge/internal/encoder"
	"github.com/zsiec/nalforge/internal/film"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/vidgen"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Annex-B output file",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "fail on values that overflow their field instead of masking them",
		},
		&cli.BoolFlag{
			Name:  "avcc",
			Usage: "also write AVCC extradata and samples next to the output",
		},
		&cli.StringFlag{
			Name:  "rtp-dump",
			Usage: "write RTP packets to this dump file",
		},
		&cli.StringFlag{
			Name:  "rtp-send",
			Usage: "send RTP packets to host:port over UDP",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "also write the syntax model as JSON next to the output",
		},
	}
}

// filmFlags are the flags of the commands that draw from a film.
func filmFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "generator seed, random when unset",
		},
		&cli.StringFlag{
			Name:  "film",
			Usage: "film file to replay",
		},
		&cli.StringFlag{
			Name:  "film-key",
			Usage: "film key in Redis to replay",
		},
		&cli.StringFlag{
			Name:  "film-dir",
			Usage: "directory films are saved to and loaded from",
		},
		&cli.BoolFlag{
			Name:    "save-film",
			Aliases: []string{"output-film"},
			Usage:   "save the film of this run",
		},
	}
}

func applyFilmFlags(cmd *cli.Command, cfg *config.FilmConfig) {
	if cmd.IsSet("seed") {
		seed := cmd.Uint64("seed")
		cfg.Seed = &seed
	}
	if cmd.IsSet("film") {
		cfg.ReplayPath = cmd.String("film")
	}
	if cmd.IsSet("film-key") {
		cfg.ReplayKey = cmd.String("film-key")
		cfg.Store = "redis"
	}
	if cmd.IsSet("film-dir") {
		cfg.SaveDir = cmd.String("film-dir")
	}
	if cmd.IsSet("save-film") {
		cfg.Save = cmd.Bool("save-film")
	}
}

func (a *application) generateCommand() *cli.Command {
	return &cli.Command{
		Name:   "generate",
		Usage:  "Generate a random stream and encode it",
		Flags:  append(outputFlags(), filmFlags()...),
		Action: a.runGenerate,
	}
}

func (a *application) runGenerate(ctx context.Context, cmd *cli.Command) error {
	rt, err := a.setup(cmd)
	if err != nil {
		return err
	}
	cfg := rt.cfg
	applyFilmFlags(cmd, &cfg.Film)

	ctx, sessionID := logger.SessionContext(ctx, rt.log)
	log := logger.FromContext(ctx)
	log.WithFields(startupFields(cmd)).Info("Starting generation")

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

	stream, err := vidgen.RandomVideo(cfg.Generator, src, logger.WithComponent(rt.log, "vidgen"))
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
		"nalus":    res.Stats.NALUs,
		"bytes":    len(res.AnnexB),
		"output":   out.AnnexB,
		"film_key": filmKey,
	}).Info("Generation complete")

	printSummary(a.stdout, summary{
		Title:     "generate",
		SessionID: sessionID,
		Seed:      src.Seed(),
		Mode:      src.Mode().String(),
		FilmKey:   filmKey,
		FilmBytes: len(src.Film()),
		Stats:     res.Stats,
		Outputs:   out,
	})
	return nil
}
