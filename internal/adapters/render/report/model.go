package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/bnema/xiq-poe-check/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type layoutMsg struct{}

// model lays out the report once and quits; the summary counts rows by health.
type model struct {
	rows      []domain.ReportRow
	opts      RenderOptions
	styles    styles
	table     string
	healthy   int
	attention int
}

func newModel(rows []domain.ReportRow, opts RenderOptions) model {
	return model{rows: rows, opts: opts, styles: newStyles()}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg { return layoutMsg{} }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(layoutMsg); !ok {
		return m, nil
	}

	m.table = renderView(m.rows, m.opts, m.styles)
	for _, row := range m.rows {
		switch {
		case isOK(row.Value, m.opts.OKValues):
			m.healthy++
		case row.Value == domain.UnknownValue || row.Value == domain.NoOutputValue:
			m.attention++
		}
	}

	return m, tea.Quit
}

func (m model) View() string {
	if len(m.rows) == 0 || (len(m.opts.OKValues) == 0 && m.attention == 0) {
		return m.table
	}

	summary := m.styles.faint.Render(fmt.Sprintf("healthy: %d  needs attention: %d", m.healthy, m.attention))
	return lipgloss.JoinVertical(lipgloss.Left, m.table, summary)
}

// Render lays out rows as the report table shown after a check run.
func Render(rows []domain.ReportRow, opts RenderOptions) (string, error) {
	if opts.Column == "" {
		opts.Column = "Value"
	}

	p := tea.NewProgram(
		newModel(rows, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
