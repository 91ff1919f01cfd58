// Package tui is the interactive slider form for checking pond water.
package tui

import (
	"fmt"
	"os"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aquaassist/internal/engine"
	"github.com/abhisek/aquaassist/internal/notify"
	"github.com/abhisek/aquaassist/internal/speech"
)

// Deps are the collaborators the screens use.
type Deps struct {
	Service      *engine.Service
	Notifier     *notify.Notifier // nil disables notifications
	Capabilities speech.Capabilities
}

// appModel is the root Bubble Tea model.
type appModel struct {
	deps    *Deps
	router  *router
	records int
	width   int
	height  int
}

func newAppModel(d *Deps) appModel {
	return appModel{
		deps:   d,
		router: newRouter(newClassifyScreen(d)),
	}
}

func (m appModel) Init() tea.Cmd {
	return m.router.active().Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case countMsg:
		m.records = int(msg)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
	}

	return m, m.router.update(msg)
}

func (m appModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m appModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if isTooSmall(m.width, m.height) {
		return renderMinSizeMessage(m.width, m.height)
	}

	active := m.router.active()
	header := renderHeader(active.Title(), m.records, m.deps.Capabilities, m.width)
	footer := renderFooter(active.KeyHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := active.View(m.width, contentHeight)

	return renderFrame(header, content, footer, m.width, m.height)
}

// Run starts the interactive form and blocks until the user quits.
func Run(d *Deps) error {
	p := tea.NewProgram(newAppModel(d))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
