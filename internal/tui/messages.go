package tui

import (
	"github.com/pipelineorganics/aigeo/internal/mesh"
)

// Message types for tea.Model

// answerMsg 一次提交完成。Applied 为 false 表示结果已过期被丢弃。
type answerMsg struct {
	Seq     uint64
	Applied bool
}

type meshLoadedMsg struct {
	Source   string
	Raw      mesh.Stats
	Geometry *mesh.Geometry
}

type meshErrorMsg struct {
	Source string
	Err    error
}

type exportDoneMsg struct {
	Path string
	Err  error
}
