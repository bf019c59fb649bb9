// Package renderer paints a bootstrapped route to the terminal.
//
// The renderer resolves the requested URL by exact manifest key, renders the
// route's screen component and wraps it in the route's layouts. The layout
// closest to the route is applied first, so the root layout ends up
// outermost. Unknown routes render a 404 view rather than failing.
package renderer

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/conneroisu/pen/internal/bootstrap"
	"github.com/conneroisu/pen/internal/logging"
)

// TerminalRenderer writes composed routes to out and render failures to
// errOut.
type TerminalRenderer struct {
	out    io.Writer
	errOut io.Writer
	logger logging.Logger

	notFoundBox   lipgloss.Style
	notFoundTitle lipgloss.Style
	notFoundURL   lipgloss.Style
	errStyle      lipgloss.Style
}

// NewTerminalRenderer creates a renderer. A nil logger discards logs.
func NewTerminalRenderer(out, errOut io.Writer, logger logging.Logger) *TerminalRenderer {
	if logger == nil {
		logger = logging.Nop()
	}
	r := lipgloss.NewRenderer(out)
	errRenderer := lipgloss.NewRenderer(errOut)

	return &TerminalRenderer{
		out:           out,
		errOut:        errOut,
		logger:        logger.WithComponent("renderer"),
		notFoundBox:   r.NewStyle().Padding(1),
		notFoundTitle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149")),
		notFoundURL:   r.NewStyle().Foreground(lipgloss.Color("#d29922")),
		errStyle:      errRenderer.NewStyle().Foreground(lipgloss.Color("#f85149")),
	}
}

// Render composes the requested route and writes it. Failures are reported
// on the error stream and never returned.
func (r *TerminalRenderer) Render(req bootstrap.RenderRequest) {
	ctx := context.Background()
	perf := logging.StartOperation(r.logger.With("url", req.URL), "render")

	view, err := r.Compose(req)
	if err != nil {
		perf.EndWithError(ctx, err)
		fmt.Fprintln(r.errOut, r.errStyle.Render("✖ Render failed: "+err.Error()))
		return
	}

	perf.End(ctx)
	fmt.Fprintln(r.out, view)
}

// Compose returns the rendered view of req.URL.
func (r *TerminalRenderer) Compose(req bootstrap.RenderRequest) (string, error) {
	if req.Manifest == nil || req.Registry == nil {
		return "", fmt.Errorf("render request for %s is incomplete", req.URL)
	}

	entry, ok := req.Manifest.Get(req.URL)
	if !ok || entry.ComponentID() == "" {
		return r.NotFound(req.URL), nil
	}

	screen, ok := req.Registry.Get(entry.ComponentID())
	if !ok {
		return "", fmt.Errorf("component not found: %s", entry.ComponentID())
	}

	props := map[string]interface{}{
		"url":     req.URL,
		"segment": entry.Segment,
	}

	view, err := screen.Render(props, "")
	if err != nil {
		return "", err
	}

	for i := len(entry.Layouts) - 1; i >= 0; i-- {
		id := entry.Layouts[i]
		layout, ok := req.Registry.Get(id)
		if !ok {
			return "", fmt.Errorf("layout not found: %s", id)
		}
		view, err = layout.Render(props, view)
		if err != nil {
			return "", err
		}
	}

	return view, nil
}

// NotFound returns the 404 view for url.
func (r *TerminalRenderer) NotFound(url string) string {
	body := r.notFoundTitle.Render("404 - Route Not Found") + "\n" +
		"The route " + r.notFoundURL.Render(url) + " does not exist."
	return r.notFoundBox.Render(body)
}
