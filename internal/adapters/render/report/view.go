package report

import (
	"fmt"
	"strings"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type RenderOptions struct {
	Building string
	Column   string
	// OKValues are highlighted as healthy; matching is case-insensitive.
	OKValues []string
}

func renderView(rows []domain.ReportRow, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("%s results for %s", opts.Column, opts.Building)),
		s.faint.Render(fmt.Sprintf("devices: %d", len(rows))),
	}

	if len(rows) == 0 {
		lines = append(lines, s.empty.Render("No device results available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		Headers("Device", opts.Column).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			if col == 1 && row >= 0 && row < len(rows) {
				return valueStyle(rows[row].Value, opts.OKValues, s)
			}
			return s.cell
		})
	for _, row := range rows {
		t.Row(row.Device, row.Value)
	}

	lines = append(lines, t.Render())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func valueStyle(value string, okValues []string, s styles) lipgloss.Style {
	if value == domain.UnknownValue || value == domain.NoOutputValue {
		return s.warning
	}
	if isOK(value, okValues) {
		return s.ok
	}

	return s.cell
}

func isOK(value string, okValues []string) bool {
	for _, ok := range okValues {
		if strings.EqualFold(ok, value) {
			return true
		}
	}

	return false
}
