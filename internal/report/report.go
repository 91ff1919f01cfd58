// Package report renders classification results for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/engine"
	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/speech"
	"github.com/abhisek/aquaassist/internal/ui/theme"
	"github.com/abhisek/aquaassist/internal/water"
)

// Options controls what the card shows.
type Options struct {
	Width  int
	Speech speech.Capabilities
	// Recorded is false when the history append failed.
	Recorded bool
	Count    int
}

// Card renders the label, both advisory messages and bookkeeping lines.
func Card(r engine.Result, opts Options) string {
	sev := r.Advisory.Severity
	status := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.SeverityColor(sev)).
		Render(fmt.Sprintf("%s Water Quality: %s", theme.SeverityIcon(sev), r.Label))

	lines := []string{
		status,
		"",
		theme.Body.Render(r.Advisory.Primary),
		theme.Body.Render(r.Advisory.Translated),
		"",
	}

	switch {
	case opts.Recorded && opts.Count > 0:
		lines = append(lines, theme.Subtitle.Render(fmt.Sprintf("📁 Saved to history (%d records)", opts.Count)))
	case opts.Recorded:
		lines = append(lines, theme.Subtitle.Render("📁 Saved to history"))
	default:
		lines = append(lines, theme.Incorrect.Render("History not saved"))
	}
	if opts.Speech.OutputAvailable {
		lines = append(lines, theme.Hint.Render("🔊 Audio advisory available (--speak)"))
	}
	lines = append(lines, theme.Hint.Render(fmt.Sprintf("%s  %s", r.ID, r.Timestamp.Format(time.RFC3339))))

	card := theme.Card.BorderForeground(theme.SeverityColor(sev))
	if opts.Width > 0 {
		card = card.Width(opts.Width)
	}
	return card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Chart draws one horizontal bar per feature, scaled to that feature's
// valid range so the four bars are comparable.
func Chart(v water.FeatureVector, width int) string {
	if width < 10 {
		width = 30
	}
	m := v.Measurements()

	var b strings.Builder
	b.WriteString(theme.Title.Render("Pond Parameters"))
	b.WriteByte('\n')
	for _, s := range water.Specs() {
		val := m.Get(s.Feature)
		frac := (val - s.Range.Min) / (s.Range.Max - s.Range.Min)
		filled := int(frac*float64(width) + 0.5)
		filled = max(0, min(width, filled))

		bar := lipgloss.NewStyle().Foreground(theme.FeatureColor(s.Feature)).Render(strings.Repeat("█", filled)) +
			theme.BarEmpty.Render(strings.Repeat("░", width-filled))

		fmt.Fprintf(&b, "%-9s %s %s\n",
			s.Label, bar, theme.Subtitle.Render(fmt.Sprintf("%g %s", val, s.Unit)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// HistoryTable renders records oldest first, with the total stored count.
func HistoryTable(records []history.Record, total int) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%g", r.PH),
			fmt.Sprintf("%g", r.Salinity),
			fmt.Sprintf("%g", r.DissolvedOxygen),
			fmt.Sprintf("%g", r.Ammonia),
			string(r.Label),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(history.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(theme.Primary)
			}
			return s.Foreground(theme.Text)
		})

	footer := theme.Subtitle.Render(fmt.Sprintf("Showing %d of %d records", len(records), total))
	return lipgloss.JoinVertical(lipgloss.Left, t.String(), footer)
}

// CatalogTable lists every label with its severity and both messages.
func CatalogTable(entries []advisory.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			theme.SeverityIcon(e.Severity) + " " + string(e.Label),
			fmt.Sprintf("%d", e.Severity),
			e.Primary,
			e.Translated,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("label", "severity", "advisory", "translated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(theme.Primary)
			}
			return s.Foreground(theme.Text)
		}).
		String()
}
