package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	successColorCode = "2"
	warningColorCode = "3"
	failureColorCode = "1"
	infoColorCode    = "6"

	successSymbol    = "✓"
	warningSymbol    = "⚠"
	failureSymbol    = "✗"
	infoSymbol       = "ℹ"
	pancakeSymbol    = "🥞"
	branchSymbol     = "├─"
	lastBranchSymbol = "└─"
	barFullSymbol    = "█"
	barEmptySymbol   = "░"
)

// palette colors terminal output. Every function is the identity when ANSI output is disabled.
type palette struct {
	success func(string) string
	warning func(string) string
	failure func(string) string
	info    func(string) string
	dim     func(string) string
	bold    func(string) string
}

func newPalette(writer io.Writer, useAnsi bool) palette {
	if !useAnsi {
		plain := func(text string) string { return text }
		return palette{success: plain, warning: plain, failure: plain, info: plain, dim: plain, bold: plain}
	}
	renderer := lipgloss.NewRenderer(writer)
	return palette{
		success: renderWith(renderer.NewStyle().Foreground(lipgloss.Color(successColorCode))),
		warning: renderWith(renderer.NewStyle().Foreground(lipgloss.Color(warningColorCode))),
		failure: renderWith(renderer.NewStyle().Foreground(lipgloss.Color(failureColorCode))),
		info:    renderWith(renderer.NewStyle().Foreground(lipgloss.Color(infoColorCode))),
		dim:     renderWith(renderer.NewStyle().Faint(true)),
		bold:    renderWith(renderer.NewStyle().Bold(true)),
	}
}

func renderWith(style lipgloss.Style) func(string) string {
	return func(text string) string {
		return style.Render(text)
	}
}
