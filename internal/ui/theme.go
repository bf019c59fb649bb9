// Package ui prints the human-readable status output of the pen CLI.
package ui

import "github.com/charmbracelet/lipgloss"

// All colors are defined here. Styles are bound to a renderer per output so
// writing to a pipe or buffer produces plain text.
var (
	colorCyan   = lipgloss.Color("#76e3ea")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorDim    = lipgloss.Color("#8b949e")
)

// Box-drawing characters for tree formatting
const (
	treeBranch   = "├─"
	treeLeaf     = "└─"
	treeVertical = "│  "
	treeIndent   = "   "
)

// Symbols prefixed to status lines
const (
	symbolInfo    = "ℹ"
	symbolStep    = "⠋"
	symbolSuccess = "✔"
	symbolWarn    = "⚠"
	symbolError   = "✖"
)

type styles struct {
	info    lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	group   lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		info:    r.NewStyle().Foreground(colorCyan),
		step:    r.NewStyle().Foreground(colorDim),
		success: r.NewStyle().Foreground(colorGreen),
		warn:    r.NewStyle().Foreground(colorYellow),
		err:     r.NewStyle().Foreground(colorRed),
		group:   r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(colorDim),
	}
}
