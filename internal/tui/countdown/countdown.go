// Package countdown renders the minute-boundary wait as a progress bar.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"ratecheck/internal/tui/styles"
)

var ErrAborted = errors.New("countdown aborted")

const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

type Model struct {
	Progress progress.Model

	Start     time.Time
	Duration  time.Duration
	Remaining time.Duration

	Done    bool
	Aborted bool

	now func() time.Time
}

func NewModel(d time.Duration) Model {
	return newModel(d, time.Now)
}

func newModel(d time.Duration, now func() time.Time) Model {
	return Model{
		Progress: progress.New(
			progress.WithGradient("#7D56F4", "#04B575"),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		Start:     now(),
		Duration:  d,
		Remaining: d,
		now:       now,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.Aborted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		w := msg.Width - 20
		if w < 10 {
			w = 10
		}
		m.Progress.Width = w

	case tickMsg:
		m.Remaining = m.Duration - m.now().Sub(m.Start)
		if m.Remaining <= 0 {
			m.Remaining = 0
			m.Done = true
			return m, tea.Quit
		}
		return m, tick()
	}

	return m, nil
}

// Percent is the elapsed share of the wait in [0, 1].
func (m Model) Percent() float64 {
	if m.Duration <= 0 {
		return 1
	}
	pct := 1 - float64(m.Remaining)/float64(m.Duration)
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

func (m Model) View() string {
	if m.Done || m.Aborted {
		return ""
	}

	s := strings.Builder{}
	s.WriteString(m.Progress.ViewAs(m.Percent()))
	s.WriteString(" ")
	s.WriteString(styles.Value.Render(fmt.Sprintf("%2.0fs", m.Remaining.Seconds())))
	s.WriteString("\n")
	s.WriteString(styles.Subtle.Render("waiting for the next rate limit window, q to abort"))
	return styles.Box.Render(s.String()) + "\n"
}

// Wait shows the countdown for d and returns once it elapses. It returns
// ErrAborted when the user quits and ctx.Err() when ctx ends first.
func Wait(ctx context.Context, d time.Duration) error {
	p := tea.NewProgram(NewModel(d), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("countdown: %w", err)
	}
	if m, ok := final.(Model); ok && m.Aborted {
		return ErrAborted
	}
	return nil
}
