package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/conneroisu/pen/internal/routetree"
)

// Printer writes status lines and route trees to a single writer.
type Printer struct {
	out    io.Writer
	styles styles
}

// NewPrinter creates a printer whose styling adapts to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

func (p *Printer) line(style lipgloss.Style, symbol, format string, args ...interface{}) {
	fmt.Fprintln(p.out, style.Render(symbol+" "+fmt.Sprintf(format, args...)))
}

// Info prints an informational line.
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.styles.info, symbolInfo, format, args...)
}

// Step prints the progress of a pipeline stage.
func (p *Printer) Step(format string, args ...interface{}) {
	p.line(p.styles.step, symbolStep, format, args...)
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.styles.success, symbolSuccess, format, args...)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(p.styles.warn, symbolWarn, format, args...)
}

// Error prints an error line. Multi-line messages keep their layout with
// continuation lines indented under the first.
func (p *Printer) Error(message string) {
	lines := strings.Split(message, "\n")
	p.line(p.styles.err, symbolError, "%s", lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintln(p.out, p.styles.dim.Render(l))
	}
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.out)
}

// Tree prints label followed by the groups of tree:
//
//	Routes:
//	├─ root
//	│  └─ /
//	└─ blog
//	   └─ /blog/
func (p *Printer) Tree(label string, tree *routetree.Tree) {
	fmt.Fprint(p.out, FormatTree(label, tree, p.styles.group))
}

// FormatTree renders the tree without a printer. The group style is applied
// to group names.
func FormatTree(label string, tree *routetree.Tree, group lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n")

	groups := tree.Groups()
	for i, g := range groups {
		lastGroup := i == len(groups)-1
		symbol, prefix := treeBranch, treeVertical
		if lastGroup {
			symbol, prefix = treeLeaf, treeIndent
		}
		b.WriteString(symbol + " " + group.Render(g.Name) + "\n")

		for j, route := range g.Routes {
			itemSymbol := treeBranch
			if j == len(g.Routes)-1 {
				itemSymbol = treeLeaf
			}
			b.WriteString(prefix + itemSymbol + " " + route + "\n")
		}
	}

	return b.String()
}
