package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aquaassist/internal/engine"
	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/report"
	"github.com/abhisek/aquaassist/internal/ui/theme"
	"github.com/abhisek/aquaassist/internal/water"
)

const sliderWidth = 32

type classifiedMsg struct {
	result engine.Result
	err    error
	count  int
}

// countMsg reports the stored record count to the frame header.
type countMsg int

// classifyScreen shows one slider per feature and classifies on Enter.
type classifyScreen struct {
	deps     *Deps
	specs    []water.Spec
	values   water.Measurements
	focus    int
	busy     bool
	result   *engine.Result
	recorded bool
	count    int
	errMsg   string
}

var _ Screen = (*classifyScreen)(nil)

func newClassifyScreen(d *Deps) *classifyScreen {
	return &classifyScreen{
		deps:   d,
		specs:  water.Specs(),
		values: water.DefaultMeasurements(),
	}
}

func (s *classifyScreen) Init() tea.Cmd {
	svc := s.deps.Service
	return func() tea.Msg {
		n, err := svc.Count(context.Background())
		if err != nil {
			return nil
		}
		return countMsg(n)
	}
}

func (s *classifyScreen) Title() string { return "Pond Water Check" }

func (s *classifyScreen) KeyHints() []KeyHint {
	return hintsFrom(keys.Up, keys.Dec, keys.IncFast, keys.Classify, keys.Reset, keys.History, keys.Quit)
}

func (s *classifyScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case countMsg:
		s.count = int(msg)
		return s, nil

	case classifiedMsg:
		s.busy = false
		var se *history.ErrStore
		switch {
		case msg.err == nil:
			s.result, s.recorded, s.errMsg = &msg.result, true, ""
			s.count = msg.count
		case errors.As(msg.err, &se):
			s.result, s.recorded = &msg.result, false
			s.errMsg = msg.err.Error()
		default:
			s.result = nil
			s.errMsg = msg.err.Error()
		}
		if s.result != nil && s.deps.Notifier != nil {
			s.deps.Notifier.Result(*s.result)
		}
		return s, func() tea.Msg { return countMsg(s.count) }

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch {
		case key.Matches(msg, keys.Up):
			s.focus = (s.focus + len(s.specs) - 1) % len(s.specs)
		case key.Matches(msg, keys.Down):
			s.focus = (s.focus + 1) % len(s.specs)
		case key.Matches(msg, keys.Dec):
			s.nudge(-1)
		case key.Matches(msg, keys.Inc):
			s.nudge(1)
		case key.Matches(msg, keys.DecFast):
			s.nudge(-10)
		case key.Matches(msg, keys.IncFast):
			s.nudge(10)
		case key.Matches(msg, keys.Reset):
			s.values = water.DefaultMeasurements()
			s.result, s.errMsg = nil, ""
		case key.Matches(msg, keys.History):
			return s, push(newHistoryScreen(s.deps))
		case key.Matches(msg, keys.Classify):
			s.busy = true
			return s, s.classify()
		}
	}
	return s, nil
}

// nudge moves the focused slider by steps, snapping to the step grid and
// staying inside the feature's range.
func (s *classifyScreen) nudge(steps int) {
	spec := s.specs[s.focus]
	v := s.values.Get(spec.Feature) + float64(steps)*spec.Step
	v = math.Round(v/spec.Step) * spec.Step
	v = math.Max(spec.Range.Min, math.Min(spec.Range.Max, v))
	s.values = s.values.With(spec.Feature, roundTo(v, decimals(spec.Step)))
}

func (s *classifyScreen) classify() tea.Cmd {
	svc, m := s.deps.Service, s.values
	return func() tea.Msg {
		ctx := context.Background()
		r, err := svc.ClassifyAndRecord(ctx, m)
		if err != nil {
			return classifiedMsg{result: r, err: err}
		}
		n, _ := svc.Count(ctx)
		return classifiedMsg{result: r, count: n}
	}
}

func (s *classifyScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, spec := range s.specs {
		b.WriteString(s.renderSlider(i, spec))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("  Checking water quality..."))
	case s.result != nil:
		cardWidth := min(width-4, 72)
		b.WriteString(report.Card(*s.result, report.Options{
			Width:    cardWidth,
			Recorded: s.recorded,
			Count:    s.count,
		}))
	case s.errMsg == "":
		b.WriteString(theme.Hint.Render("  Adjust the readings and press Enter to predict."))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("  " + s.errMsg))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *classifyScreen) renderSlider(i int, spec water.Spec) string {
	v := s.values.Get(spec.Feature)
	frac := (v - spec.Range.Min) / (spec.Range.Max - spec.Range.Min)
	knob := int(math.Round(frac * float64(sliderWidth-1)))

	color := theme.FeatureColor(spec.Feature)
	track := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("━", knob)) +
		lipgloss.NewStyle().Foreground(color).Bold(true).Render("●") +
		theme.BarEmpty.Render(strings.Repeat("─", sliderWidth-1-knob))

	label := fmt.Sprintf("%-9s", spec.Label)
	value := fmt.Sprintf("%.*f %s", decimals(spec.Step), v, spec.Unit)
	style := theme.Unselected
	prefix := "  "
	if i == s.focus {
		style = theme.Selected
		prefix = "> "
	}
	return style.Render(prefix+label) + " " + track + " " + style.Render(value)
}

func decimals(step float64) int {
	return max(0, int(math.Ceil(-math.Log10(step)-1e-9)))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
