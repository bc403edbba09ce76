package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
)

const (
	minWidth     = 60
	inputHeight  = 6
	headerHeight = 2
	footerHeight = 1
	// 边框 2 行 + 面板标题 1 行
	panelChrome = 3
)

// UIStateManager 管理输入框、结果视口的尺寸和三块面板的布局
type UIStateManager struct {
	viewport viewport.Model
	textarea textarea.Model
	ready    bool

	width  int
	height int
}

func NewUIStateManager() *UIStateManager {
	ta := textarea.New()
	ta.Placeholder = "tell me the best params for a TPMS electrode…"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(inputHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(60, 10)

	return &UIStateManager{
		viewport: vp,
		textarea: ta,
	}
}

func (m *UIStateManager) IsReady() bool {
	return m.ready
}

// topColumnWidth 上方两块面板各自的外部宽度
func (m *UIStateManager) topColumnWidth() int {
	return m.width / 2
}

// innerWidth 面板内容区宽度（去掉边框和左右内边距）
func innerWidth(outer int) int {
	return max(outer-4, 1)
}

// topHeight 上方面板内容区高度
func (m *UIStateManager) topHeight() int {
	// 标题提示 1 行 + 输入框 + 状态行 1 行 + 错误 1 行
	return inputHeight + 3
}

// PreviewSize 返回网格预览的列数和行数
func (m *UIStateManager) PreviewSize() (int, int) {
	w := innerWidth(m.topColumnWidth())
	// 预览下方显示 2 行统计信息
	h := max(m.topHeight()-2, 1)
	return w, h
}

// UpdateViewportSize 根据终端尺寸重新布局
func (m *UIStateManager) UpdateViewportSize(width, height int) {
	m.width = max(width, minWidth)
	m.height = height

	resultHeight := height - headerHeight - footerHeight - (m.topHeight() + panelChrome) - panelChrome
	resultHeight = max(resultHeight, 3)

	if !m.ready {
		m.viewport = viewport.New(innerWidth(m.width), resultHeight)
		m.ready = true
	} else {
		m.viewport.Width = innerWidth(m.width)
		m.viewport.Height = resultHeight
	}
	m.textarea.SetWidth(innerWidth(m.topColumnWidth()))
}
