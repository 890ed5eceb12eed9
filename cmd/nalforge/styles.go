package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/nalforge/internal/encoder"
)

var (
	accent  = lipgloss.Color("#FF6B35")
	muted   = lipgloss.Color("#90A4AE")
	success = lipgloss.Color("#4CAF50")
	warning = lipgloss.Color("#FFB74D")

	titleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(12)

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 1)

	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	borderStyle = lipgloss.NewStyle().Foreground(muted)
	okStyle     = lipgloss.NewStyle().Foreground(success)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
)

// summary is what a run reports when it finishes.
type summary struct {
	Title     string
	SessionID string
	Seed      uint64
	Mode      string
	FilmKey   string
	FilmBytes int
	Input     string
	RoundTrip bool // Identical compares input and output
	Identical bool
	Changed   int // slices redrawn by randomize
	Stats     encoder.Stats
	Outputs   *outputs
}

func printSummary(w io.Writer, s summary) {
	var lines []string
	line := func(label, value string) {
		if value != "" {
			lines = append(lines, labelStyle.Render(label)+value)
		}
	}

	lines = append(lines, titleStyle.Render("nalforge "+s.Title))
	line("session", s.SessionID)
	if s.Input == "" || s.Changed > 0 {
		line("seed", fmt.Sprintf("%d", s.Seed))
		line("film", s.Mode)
		if s.FilmKey != "" {
			line("saved film", fmt.Sprintf("%s (%d bytes)", s.FilmKey, s.FilmBytes))
		}
	}
	line("input", s.Input)
	if s.Changed > 0 {
		line("randomized", fmt.Sprintf("%d slices", s.Changed))
	}
	if s.RoundTrip {
		if s.Identical {
			line("round trip", okStyle.Render("identical"))
		} else {
			line("round trip", warnStyle.Render("changed"))
		}
	}

	line("nalus", fmt.Sprintf("%d (%d passthrough, %d cut)", s.Stats.NALUs, s.Stats.Passthrough, s.Stats.Cut))
	line("ep bytes", fmt.Sprintf("%d", s.Stats.EmulationPreventionBytes))
	if o := s.Outputs; o != nil {
		line("annex-b", o.AnnexB)
		line("avcc", strings.TrimSpace(o.Extradata+" "+o.Samples))
		line("json", o.JSON)
		line("rtp dump", o.RTPDump)
		if o.RTPPackets > 0 {
			line("rtp", fmt.Sprintf("%d packets, %d sent", o.RTPPackets, o.RTPSent))
		}
	}

	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}
