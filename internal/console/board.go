package console

import (
	"fmt"
	"strings"

	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/race/server"
)

const (
	minBarWidth = 10
	maxBarWidth = 40
	// columns taken by everything on a standings row except the bar
	rowChrome = 60
)

// Board lays a race snapshot out as lines of text.
type Board struct {
	TrackLength float64
	Width       int
}

// Lines renders the snapshot plus the most recent event messages.
func (b Board) Lines(snap *server.RaceSnapshot, events []string) []string {
	if snap == nil {
		return []string{" waiting for the race to start..."}
	}

	header := fmt.Sprintf(" MARBLES  round %d  %5.1fs  spectators %d",
		snap.Round, snap.Elapsed.Seconds(), snap.Spectators)
	lines := []string{header, " " + strings.Repeat("-", max(len(header)-1, 1))}

	readouts := make(map[int]object.Readout, len(snap.Marbles))
	for _, r := range snap.Marbles {
		readouts[r.ID] = r
	}

	bar := b.barWidth()
	for _, st := range snap.Standings {
		r := readouts[st.MarbleID]
		var status string
		switch {
		case st.Eliminated:
			status = "out"
		case st.Finished:
			status = "finished"
		case r.Ability != "":
			status = fmt.Sprintf("%s: %s", r.Ability, r.AbilityState)
			if r.Phased {
				status += " (phased)"
			}
		}
		lines = append(lines, fmt.Sprintf(" %2d. %-14s %s %6.1fm %5.1fm/s  %s",
			st.Place, truncate(st.Name, 14), b.progress(st.Distance, st.Finished, st.Eliminated, bar),
			st.Distance, r.Speed, status))
	}

	lines = append(lines, "")
	if snap.Finished() {
		lines = append(lines, fmt.Sprintf(" Winner: %s!", snap.WinnerName))
	} else {
		lines = append(lines, " Racing...")
	}

	if len(events) > 0 {
		lines = append(lines, "")
		for _, e := range events {
			lines = append(lines, " "+e)
		}
	}
	return lines
}

// Render draws the board into cw starting at the top of the screen.
func (b Board) Render(cw *ChunkWriter, snap *server.RaceSnapshot, events []string) {
	lines := b.Lines(snap, events)
	for i, l := range lines {
		cw.Line(i+1, l)
	}
	cw.ClearBelow(len(lines) + 1)
}

func (b Board) barWidth() int {
	w := b.Width - rowChrome
	return min(max(w, minBarWidth), maxBarWidth)
}

// progress draws how far along the track a marble is.
func (b Board) progress(distance float64, finished, eliminated bool, width int) string {
	frac := 0.0
	if b.TrackLength > 0 {
		frac = 1 - distance/b.TrackLength
	}
	if finished {
		frac = 1
	}
	frac = min(max(frac, 0), 1)

	filled := int(frac * float64(width))
	var sb strings.Builder
	sb.Grow(width + 2)
	sb.WriteByte('[')
	for i := range width {
		switch {
		case eliminated && i < filled:
			sb.WriteByte('x')
		case i < filled:
			sb.WriteByte('=')
		case i == filled && !finished && !eliminated:
			sb.WriteByte('o')
		default:
			sb.WriteByte('.')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
