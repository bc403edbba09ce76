package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	askTitle     = "Ask the Designer"
	previewTitle = "3D Preview"
	resultTitle  = "Result"

	previewPlaceholder = "Coming soon: lattice viewer"
)

func (m Model) View() string {
	if !m.ui.IsReady() {
		return "Initializing..."
	}

	colWidth := m.ui.topColumnWidth()
	ask := m.panel(askTitle, m.askView(), colWidth, m.ui.topHeight())
	preview := m.panel(previewTitle, m.previewView(), m.ui.width-colWidth, m.ui.topHeight())
	result := m.panel(resultTitle, m.ui.viewport.View(), m.ui.width, m.ui.viewport.Height)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		lipgloss.JoinHorizontal(lipgloss.Top, ask, preview),
		result,
		m.helpView(),
	)
}

func (m Model) headerView() string {
	title := titleStyle.Render("PO • AI Geometry") + mutedStyle.Render(" "+Version)
	api := mutedStyle.Render("API: " + m.apiBaseDisplay())
	gap := max(m.ui.width-lipgloss.Width(title)-lipgloss.Width(api), 1)
	return title + strings.Repeat(" ", gap) + api + "\n"
}

func (m Model) apiBaseDisplay() string {
	if m.apiBase == "" {
		return "not set"
	}
	return m.apiBase
}

// panel 渲染一个带标题的圆角面板，外部宽度为 outer
func (m Model) panel(title, body string, outer, height int) string {
	inner := innerWidth(outer)
	content := lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render(title),
		lipgloss.NewStyle().Width(inner).Height(height).MaxHeight(height).Render(body),
	)
	return panelStyle.Width(outer - 2).Render(content)
}

func (m Model) askView() string {
	state := m.flow.Snapshot()

	var button string
	if state.Loading {
		button = buttonDisabledStyle.Render(m.spinner.View() + "Thinking…")
	} else {
		button = buttonStyle.Render("Ask AI")
	}

	errLine := ""
	if state.HasError() {
		errLine = errorStyle.Render(state.ErrorText())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		hintStyle.Render("Describe the structure you want to print."),
		m.ui.textarea.View(),
		button,
		errLine,
	)
}

func (m Model) previewView() string {
	switch {
	case m.meshSource == "":
		return mutedStyle.Render(previewPlaceholder)
	case m.meshLoading:
		return hintStyle.Render("Loading mesh…")
	case m.meshErr != "":
		return errorStyle.Render("Mesh unavailable: " + m.meshErr)
	case m.meshGeom == nil:
		return hintStyle.Render("Loading mesh…")
	}

	size := m.meshRaw.Box.Size()
	stats := []string{
		fmt.Sprintf("%d triangles", m.meshRaw.Triangles),
		fmt.Sprintf("%.4g x %.4g x %.4g", size.X, size.Y, size.Z),
	}
	lines := append(append([]string{}, m.meshLines...), mutedStyle.Render(strings.Join(stats, " • ")))
	if m.meshRaw.Name != "" {
		lines = append(lines, mutedStyle.Render(m.meshRaw.Name))
	}
	return meshStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) helpView() string {
	help := "Enter: ask • Ctrl+R: reload mesh • Ctrl+E: export • Esc: cancel • Ctrl+C: quit"
	if m.notice != "" {
		return noticeStyle.Render(m.notice) + "  " + mutedStyle.Render(help)
	}
	return mutedStyle.Render(help)
}
