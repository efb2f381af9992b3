package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
)

// previewPane shows the highlighted record rendered as markdown.
type previewPane struct {
	viewport viewport.Model
	width    int
	height   int
	key      string
}

func newPreviewPane() *previewPane {
	return &previewPane{viewport: viewport.New(40, 10)}
}

func (p *previewPane) SetSize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}
	p.width = width
	p.height = height
	p.viewport.Width = width
	p.viewport.Height = height
	setMarkdownWordWrap(width - 2)
	p.key = ""
}

// Show renders m unless it is already on screen. ok is false when no row is
// highlighted.
func (p *previewPane) Show(m othermaster.Master, ok bool) {
	key := "none"
	if ok {
		key = fmt.Sprintf("%d|%s|%s|%s", m.TransNo, m.MasterType, m.MasterName, m.Status)
	}
	if key == p.key {
		return
	}
	p.key = key
	if !ok {
		p.viewport.SetContent("_No record highlighted._")
		return
	}
	p.viewport.SetContent(RenderMarkdown(recordMarkdown(m)))
	p.viewport.GotoTop()
}

// Invalidate forces the next Show to re-render, e.g. after a theme change.
func (p *previewPane) Invalidate() { p.key = "" }

func (p *previewPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (p *previewPane) View(s styles) string {
	title := s.title.Render("Preview")
	return s.panel.Width(p.width).Render(title + "\n" + p.viewport.View())
}

func recordMarkdown(m othermaster.Master) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.MasterName)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Id | %d |\n", m.TransNo)
	fmt.Fprintf(&b, "| Type | %s |\n", m.MasterType)
	fmt.Fprintf(&b, "| Name | %s |\n", m.MasterName)
	fmt.Fprintf(&b, "| Status | %s |\n", m.StatusLabel())
	return b.String()
}

func recordJSON(m othermaster.Master) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
