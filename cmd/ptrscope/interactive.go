package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type interactiveModel struct {
	err     error
	sess    *session
	input   textinput.Model
	result  string
	events  []string
	history []string
}

func newInteractiveModel(sess *session) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "new a"
	ti.Prompt = "> "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{
		sess:  sess,
		input: ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.sess.Close()
			return m, tea.Quit

		case "up":
			if n := len(m.history); n > 0 {
				m.input.SetValue(m.history[n-1])
				m.input.CursorEnd()
			}
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				m.sess.Close()
				return m, tea.Quit
			}
			m.history = append(m.history, line)
			m.result, m.err = m.sess.Exec(line)
			m.events = m.sess.Events()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ptrscope"))
	b.WriteString("\n\n")
	b.WriteString(renderRows(m.sess.Rows()))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.result != "" {
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n")
	}
	if len(m.events) > 0 {
		b.WriteString(renderEvents(m.events))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑ last command • help commands • esc quit"))
	return b.String()
}

func runInteractive(sess *session) error {
	p := tea.NewProgram(newInteractiveModel(sess), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
