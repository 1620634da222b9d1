package countdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tickInterval = time.Second

type tickMsg time.Time

type model struct {
	spinner  spinner.Model
	bar      progress.Model
	label    string
	total    time.Duration
	deadline time.Time
	now      func() time.Time
	done     bool
}

func newModel(label string, total time.Duration, now func() time.Time) model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return model{
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		label:    label,
		total:    total,
		deadline: now().Add(total),
		now:      now,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(m.remaining()))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickMsg:
		remaining := m.remaining()
		if remaining <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, tick(remaining)
	default:
		return m, nil
	}
}

func (m model) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s %s %s\n", m.spinner.View(), m.label, m.bar.ViewAs(m.elapsedFraction()), formatRemaining(m.remaining()))
}

func (m model) remaining() time.Duration {
	remaining := m.deadline.Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m model) elapsedFraction() float64 {
	if m.total <= 0 {
		return 1
	}
	return 1 - float64(m.remaining())/float64(m.total)
}

func tick(remaining time.Duration) tea.Cmd {
	next := tickInterval
	if remaining > 0 && remaining < next {
		next = remaining
	}

	return tea.Tick(next, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// Waiter shows a countdown on output while it waits.
type Waiter struct {
	output io.Writer
	now    func() time.Time
}

func NewWaiter(output io.Writer) *Waiter {
	return &Waiter{output: output, now: time.Now}
}

func (w *Waiter) Wait(ctx context.Context, d time.Duration, label string) error {
	if d <= 0 {
		return ctx.Err()
	}

	p := tea.NewProgram(
		newModel(label, d, w.now),
		tea.WithInput(nil),
		tea.WithOutput(w.output),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	return nil
}

// LineWaiter prints the wait once and sleeps; used when output is not a terminal.
type LineWaiter struct {
	output io.Writer
}

func NewLineWaiter(output io.Writer) *LineWaiter {
	return &LineWaiter{output: output}
}

func (w *LineWaiter) Wait(ctx context.Context, d time.Duration, label string) error {
	if d <= 0 {
		return ctx.Err()
	}
	if _, err := fmt.Fprintf(w.output, "%s (%s)\n", label, formatRemaining(d)); err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
