package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/zsiec/nalforge/internal/decoder"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/syntax"
)

func (a *application) inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Decode an Annex-B stream and print its NALUs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Annex-B stream to inspect",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the decoded syntax model as JSON instead of a table",
			},
		},
		Action: a.runInspect,
	}
}

func (a *application) runInspect(_ context.Context, cmd *cli.Command) error {
	rt, err := a.setup(cmd)
	if err != nil {
		return err
	}

	data, err := readInput(cmd.String("input"))
	if err != nil {
		return err
	}
	stream, err := decoder.New(logger.WithComponent(rt.log, "decoder")).Decode(data)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return stream.WriteJSON(a.stdout)
	}
	printInspect(a.stdout, stream)
	return nil
}

// inspectRows describes every NALU of stream, one row each.
func inspectRows(stream *syntax.Stream) [][]string {
	var rows [][]string
	var slices, pps, sps int

	for i := range stream.NALUs {
		n := &stream.NALUs[i]
		detail := ""

		switch n.NalUnitType {
		case syntax.NALUSPS:
			s := &stream.SPS[sps]
			sps++
			detail = fmt.Sprintf("id %d profile %d level %d %dx%d mbs",
				s.SeqParameterSetID, s.ProfileIDC, s.LevelIDC, s.PicWidthInMbsMinus1+1, s.PicHeightInMapUnitsMinus1+1)
		case syntax.NALUPPS:
			p := &stream.PPS[pps]
			pps++
			detail = fmt.Sprintf("id %d sps %d", p.PicParameterSetID, p.SeqParameterSetID)
			if p.IsSubsetPPS {
				detail += " (subset)"
			}
		case syntax.NALUSliceNonIDR, syntax.NALUSliceIDR:
			h := &stream.Slices[slices].Header
			slices++
			detail = fmt.Sprintf("type %d pps %d frame %d", h.SliceType, h.PicParameterSetID, h.FrameNum)
		case syntax.NALUSliceExtension:
			if !n.SVCExtensionFlag {
				h := &stream.Slices[slices].Header
				slices++
				detail = fmt.Sprintf("view %d type %d pps %d", n.MVC.ViewID, h.SliceType, h.PicParameterSetID)
			}
		}

		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(int(n.NalUnitType)),
			syntax.TypeName(n.NalUnitType),
			strconv.Itoa(int(n.NalRefIdc)),
			strconv.Itoa(len(n.Content)),
			detail,
		})
	}
	return rows
}

func printInspect(w io.Writer, stream *syntax.Stream) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "TYPE", "NAME", "REF", "BYTES", "DETAIL").
		Rows(inspectRows(stream)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d NALUs, %d SPS, %d PPS, %d slices",
		len(stream.NALUs), len(stream.SPS), len(stream.PPS), len(stream.Slices))))
}
