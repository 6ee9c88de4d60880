package countdown

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestModel_TicksUntilDone(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 17, 9, 0, 5, 0, time.UTC)}
	m := newModel(56*time.Second, c.now)

	c.t = c.t.Add(28 * time.Second)
	next, cmd := m.Update(tickMsg(c.t))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.False(t, m.Done)
	assert.Equal(t, 28*time.Second, m.Remaining)
	assert.InDelta(t, 0.5, m.Percent(), 0.001)
	assert.Contains(t, m.View(), "28s")

	c.t = c.t.Add(30 * time.Second)
	next, cmd = m.Update(tickMsg(c.t))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.Done)
	assert.Zero(t, m.Remaining)
	assert.Equal(t, 1.0, m.Percent())
	assert.Empty(t, m.View())
}

func TestModel_Abort(t *testing.T) {
	m := NewModel(time.Minute)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.Aborted)
	assert.False(t, m.Done)
}

func TestModel_WindowResize(t *testing.T) {
	m := NewModel(time.Minute)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 25, Height: 10})
	assert.Equal(t, 10, next.(Model).Progress.Width)
}
