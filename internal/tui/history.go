package tui

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/report"
	"github.com/abhisek/aquaassist/internal/ui/theme"
)

const historyLimit = 15

type historyLoadedMsg struct {
	records []history.Record
	total   int
	err     error
}

// historyScreen lists the most recent classifications.
type historyScreen struct {
	deps    *Deps
	records []history.Record
	total   int
	loaded  bool
	errMsg  string
}

var _ Screen = (*historyScreen)(nil)

func newHistoryScreen(d *Deps) *historyScreen {
	return &historyScreen{deps: d}
}

func (s *historyScreen) Init() tea.Cmd {
	svc := s.deps.Service
	return func() tea.Msg {
		ctx := context.Background()
		total, err := svc.Count(ctx)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		records, err := svc.History(ctx, historyLimit)
		return historyLoadedMsg{records: records, total: total, err: err}
	}
}

func (s *historyScreen) Title() string { return "History" }

func (s *historyScreen) KeyHints() []KeyHint {
	return hintsFrom(keys.Back, keys.Quit)
}

func (s *historyScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.records, s.total = msg.records, msg.total
		return s, func() tea.Msg { return countMsg(msg.total) }

	case tea.KeyMsg:
		if key.Matches(msg, keys.Back) {
			return s, pop
		}
	}
	return s, nil
}

func (s *historyScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	case !s.loaded:
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	case len(s.records) == 0:
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  No classifications yet.")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+report.HistoryTable(s.records, s.total))
}
