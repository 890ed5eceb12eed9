package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zsiec/nalforge/internal/decoder"
	"github.com/zsiec/nalforge/internal/encoder"
	"github.com/zsiec/nalforge/internal/logger"
)

func (a *application) encodeCommand() *cli.Command {
	flags := append(outputFlags(),
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Annex-B stream to decode and re-encode",
		},
		&cli.IntFlag{
			Name:  "cut",
			Value: -1,
			Usage: "drop the NALU at this index from the output",
		},
	)

	return &cli.Command{
		Name:   "encode",
		Usage:  "Decode an Annex-B stream and encode it again",
		Flags:  flags,
		Action: a.runEncode,
	}
}

func (a *application) runEncode(ctx context.Context, cmd *cli.Command) error {
	rt, err := a.setup(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("cut") {
		rt.cfg.Encoder.CutNALU = int(cmd.Int("cut"))
	}

	ctx, sessionID := logger.SessionContext(ctx, rt.log)
	log := logger.FromContext(ctx)
	log.WithFields(startupFields(cmd)).WithField("input", cmd.String("input")).Info("Starting re-encode")

	data, err := readInput(cmd.String("input"))
	if err != nil {
		return err
	}

	stream, err := decoder.New(logger.WithComponent(rt.log, "decoder")).Decode(data)
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
		"nalus":     res.Stats.NALUs,
		"bytes":     len(res.AnnexB),
		"identical": string(data) == string(res.AnnexB),
		"output":    out.AnnexB,
	}).Info("Re-encode complete")

	printSummary(a.stdout, summary{
		Title:     "encode",
		SessionID: sessionID,
		Input:     cmd.String("input"),
		RoundTrip: true,
		Identical: string(data) == string(res.AnnexB),
		Stats:     res.Stats,
		Outputs:   out,
	})
	return nil
}
