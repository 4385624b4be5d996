package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// spinnerModel drives one bubbletea program for the lifetime of a single
// blocking operation: it ticks the spinner until the wrapped function
// reports a result on done.
type spinnerModel struct {
	spin    spinner.Model
	message string
	done    chan error
	err     error
	quit    bool
}

type spinnerResultMsg struct{ err error }

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForResult(m.done))
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerResultMsg:
		m.err = msg.err
		m.quit = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.quit {
		if m.err != nil {
			return Colorize("✗", Red) + " " + m.message + "\n"
		}
		return Colorize("✓", Green) + " " + m.message + "\n"
	}
	return m.spin.View() + " " + m.message
}

func waitForResult(done chan error) tea.Cmd {
	return func() tea.Msg {
		return spinnerResultMsg{err: <-done}
	}
}

// ShowSpinner runs fn while animating a spinner labeled message, via a
// minimal bubbletea program wrapping bubbles' spinner component. Returns
// fn's error.
func ShowSpinner(message string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	m := spinnerModel{
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		message: message,
		done:    done,
	}

	p := tea.NewProgram(m)
	finalModel, runErr := p.Run()
	if runErr != nil {
		return runErr
	}
	return finalModel.(spinnerModel).err
}
