package tui

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/pipelineorganics/aigeo/internal/export"
	"github.com/pipelineorganics/aigeo/internal/logger"
	"github.com/pipelineorganics/aigeo/internal/mesh"
	"github.com/pipelineorganics/aigeo/internal/session"
	"go.uber.org/zap"
)

// Version 是当前版本，由 main 包设置
var Version = "dev"

// Options 创建 Model 所需的依赖
type Options struct {
	Flow       *session.Flow
	APIBase    string
	Loader     *mesh.Loader
	MeshSource string
	// ExportDir 为空时导出到当前目录
	ExportDir string
}

type Model struct {
	ui      *UIStateManager
	spinner spinner.Model

	flow    *session.Flow
	apiBase string

	loader      *mesh.Loader
	meshSource  string
	meshLoading bool
	meshGeom    *mesh.Geometry
	meshRaw     mesh.Stats
	meshErr     string
	meshLines   []string

	notice    string
	exportDir string

	ctx    context.Context
	cancel context.CancelFunc

	// now 可在测试中替换
	now func() time.Time
}

func InitialModel(opts Options) Model {
	if opts.Flow == nil {
		opts.Flow = session.NewFlow(nil)
	}
	if opts.Loader == nil {
		opts.Loader = mesh.NewLoader(nil)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = hintStyle

	ctx, cancel := context.WithCancel(context.Background())
	src := strings.TrimSpace(opts.MeshSource)

	return Model{
		ui:          NewUIStateManager(),
		spinner:     sp,
		flow:        opts.Flow,
		apiBase:     strings.TrimSpace(opts.APIBase),
		loader:      opts.Loader,
		meshSource:  src,
		meshLoading: src != "",
		ctx:         ctx,
		cancel:      cancel,
		exportDir:   opts.ExportDir,
		now:         time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.meshSource != "" {
		cmds = append(cmds, m.loadMesh(m.meshSource))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.flow.Cancel()
			m.cancel()
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyEsc:
			if m.flow.Cancel() {
				m.notice = "Request cancelled."
			}
			return m, nil
		case tea.KeyCtrlR:
			if m.meshSource != "" && !m.meshLoading {
				m.loader.Forget(m.meshSource)
				m.meshLoading = true
				m.meshErr = ""
				return m, m.loadMesh(m.meshSource)
			}
			return m, nil
		case tea.KeyCtrlE:
			return m, m.exportAnswer()
		}

	case tea.WindowSizeMsg:
		m.ui.UpdateViewportSize(msg.Width, msg.Height)
		m.renderPreview()
		m.refreshResult()
		return m, nil

	case answerMsg:
		if msg.Applied {
			m.refreshResult()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.flow.Snapshot().Loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case meshLoadedMsg:
		if msg.Source != m.meshSource {
			return m, nil
		}
		m.meshLoading = false
		m.meshErr = ""
		m.meshGeom = msg.Geometry
		m.meshRaw = msg.Raw
		m.renderPreview()
		return m, nil

	case meshErrorMsg:
		if msg.Source != m.meshSource {
			return m, nil
		}
		m.meshLoading = false
		m.meshGeom = nil
		m.meshLines = nil
		m.meshErr = msg.Err.Error()
		return m, nil

	case exportDoneMsg:
		if msg.Err != nil {
			m.notice = "Export failed: " + msg.Err.Error()
		} else {
			m.notice = "Exported to " + msg.Path
		}
		return m, nil
	}

	m.ui.textarea, cmd = m.ui.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.flow.SetPrompt(m.ui.textarea.Value())

	m.ui.viewport, cmd = m.ui.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit 发起一次提交。空白输入不会发起请求；
// 请求进行中再次提交会替代旧请求，旧请求的结果被丢弃。
func (m Model) submit() (tea.Model, tea.Cmd) {
	ticket, ok := m.flow.Begin(m.ctx, m.ui.textarea.Value())
	if !ok {
		return m, nil
	}
	m.notice = ""
	m.refreshResult()

	flow := m.flow
	run := func() tea.Msg {
		_, applied, _ := flow.Run(ticket)
		return answerMsg{Seq: ticket.Seq, Applied: applied}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) loadMesh(src string) tea.Cmd {
	loader := m.loader
	ctx := m.ctx
	return func() tea.Msg {
		g, err := loader.Load(ctx, src)
		if err != nil {
			logger.Warn("mesh load failed", zap.String("source", src), zap.Error(err))
			return meshErrorMsg{Source: src, Err: err}
		}
		raw := mesh.Measure(g)
		mesh.Normalize(g)
		return meshLoadedMsg{Source: src, Raw: raw, Geometry: g}
	}
}

func (m Model) exportAnswer() tea.Cmd {
	state := m.flow.Snapshot()
	if !state.HasAnswer() {
		return nil
	}
	path := filepath.Join(m.exportDir, export.DefaultPath(m.now()))
	return func() tea.Msg {
		err := export.ExportHTML(path, state.Prompt, state.AnswerText())
		return exportDoneMsg{Path: path, Err: err}
	}
}

// refreshResult 把当前回答原样放入结果视口
func (m *Model) refreshResult() {
	if !m.ui.IsReady() {
		return
	}
	state := m.flow.Snapshot()
	if state.HasAnswer() {
		m.ui.viewport.SetContent(wrapAnswer(state.AnswerText(), m.ui.viewport.Width))
	} else {
		m.ui.viewport.SetContent(mutedStyle.Render("Your answer will appear here."))
	}
	m.ui.viewport.GotoTop()
}

// wrapAnswer 只在超宽处插入换行，不展开制表符也不补齐空格
func wrapAnswer(answer string, width int) string {
	return ansi.Wrap(answer, width, "")
}

func (m *Model) renderPreview() {
	if m.meshGeom == nil || !m.ui.IsReady() {
		return
	}
	w, h := m.ui.PreviewSize()
	m.meshLines = mesh.Preview(m.meshGeom, w, h)
}

// State 返回当前会话状态，供测试和外部检查
func (m Model) State() session.State {
	return m.flow.Snapshot()
}
