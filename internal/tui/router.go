package tui

import (
	tea "charm.land/bubbletea/v2"
)

// Screen is one full-page view inside the app frame.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the content area, excluding header and footer.
	View(width, height int) string
	Title() string
	KeyHints() []KeyHint
}

type pushScreenMsg struct{ screen Screen }

type popScreenMsg struct{}

func push(s Screen) tea.Cmd { return func() tea.Msg { return pushScreenMsg{s} } }

func pop() tea.Msg { return popScreenMsg{} }

// router keeps a stack of screens; the bottom one never pops.
type router struct {
	stack []Screen
}

func newRouter(initial Screen) *router {
	return &router{stack: []Screen{initial}}
}

func (r *router) active() Screen { return r.stack[len(r.stack)-1] }

func (r *router) depth() int { return len(r.stack) }

func (r *router) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pushScreenMsg:
		r.stack = append(r.stack, msg.screen)
		return msg.screen.Init()
	case popScreenMsg:
		if len(r.stack) > 1 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		return nil
	}

	updated, cmd := r.active().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}
