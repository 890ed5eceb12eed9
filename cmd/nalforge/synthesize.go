package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zsiec/nalforge/internal/encoder"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/syntax"
)

func (a *application) synthesizeCommand() *cli.Command {
	flags := append(outputFlags(),
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "JSON syntax model to encode",
		},
	)

	return &cli.Command{
		Name:   "synthesize",
		Usage:  "Encode a JSON syntax model written by inspect --json or --json",
		Flags:  flags,
		Action: a.runSynthesize,
	}
}

func (a *application) runSynthesize(ctx context.Context, cmd *cli.Command) error {
	rt, err := a.setup(cmd)
	if err != nil {
		return err
	}

	ctx, sessionID := logger.SessionContext(ctx, rt.log)
	log := logger.FromContext(ctx)
	log.WithFields(startupFields(cmd)).WithField("input", cmd.String("input")).Info("Starting synthesis")

	data, err := readInput(cmd.String("input"))
	if err != nil {
		return err
	}
	stream, err := syntax.ReadJSON(data)
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

	log.WithFields(map[string]interface{}{
		"nalus":  res.Stats.NALUs,
		"bytes":  len(res.AnnexB),
		"output": out.AnnexB,
	}).Info("Synthesis complete")

	printSummary(a.stdout, summary{
		Title:     "synthesize",
		SessionID: sessionID,
		Input:     cmd.String("input"),
		Stats:     res.Stats,
		Outputs:   out,
	})
	return nil
}
