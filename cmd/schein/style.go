package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/schein/criteria"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true)
	headStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))
)

func okText(s string) string  { return okStyle.Render(s) }
func errText(s string) string { return errStyle.Render(s) }

func passedText(passed bool) string {
	if passed {
		return okText("PASSED")
	}
	return errText("NOT PASSED")
}

func statusCell(st criteria.Status) string {
	cell := fmt.Sprintf("%s/%s %s", formatNumber(st.Achieved), formatNumber(st.Total), st.Unit)
	if st.Passed {
		return okText(cell)
	}
	return errText(cell)
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%g", f)
}
