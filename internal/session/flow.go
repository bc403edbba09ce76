package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pipelineorganics/aigeo/internal/api"
	"github.com/pipelineorganics/aigeo/internal/logger"
	"go.uber.org/zap"
)

// Asker 发送 prompt 并返回回答文本；*api.Client 实现它
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Ticket 标识一次提交。Seq 单调递增，只有最新的 Ticket 能修改状态。
type Ticket struct {
	Seq    uint64
	Prompt string
	Ctx    context.Context
	start  time.Time
}

// Outcome 是一次已生效提交的结果
type Outcome struct {
	Seq    uint64
	Prompt string
	Answer string
	Err    error
}

// Flow 管理提交流程。所有方法可并发调用。
type Flow struct {
	asker Asker

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc

	// OnSettled 在最新提交完成后调用（在锁外），用于写历史等副作用
	OnSettled func(Outcome)
}

func NewFlow(asker Asker) *Flow {
	return &Flow{asker: asker}
}

// Snapshot 返回当前状态的副本
func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Latest 返回最近一次发出的序号，未提交过时为 0
func (f *Flow) Latest() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}

// SetPrompt 记录输入框内容，不影响其它字段
func (f *Flow) SetPrompt(prompt string) {
	f.mu.Lock()
	f.state.Prompt = prompt
	f.mu.Unlock()
}

// Begin 开始一次提交。去除空白后为空的 prompt 不会开始（返回 false）。
// 新的提交会取消上一张 Ticket 的 context。
func (f *Flow) Begin(parent context.Context, prompt string) (Ticket, bool) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return Ticket{}, false
	}
	if parent == nil {
		parent = context.Background()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel

	f.seq++
	f.state.Prompt = prompt
	f.state.Loading = true
	f.state.Answer = nil
	f.state.Error = nil

	logger.Info("submission started", zap.Uint64("seq", f.seq), zap.Int("prompt_len", len(trimmed)))

	return Ticket{Seq: f.seq, Prompt: trimmed, Ctx: ctx, start: time.Now()}, true
}

// Settle 应用一次提交的结果。过期的 Ticket 被丢弃并返回 false。
func (f *Flow) Settle(t Ticket, answer string, err error) bool {
	f.mu.Lock()
	if t.Seq == 0 || t.Seq != f.seq {
		f.mu.Unlock()
		logger.Debug("stale submission discarded", zap.Uint64("seq", t.Seq))
		return false
	}

	if err != nil {
		msg := api.UserMessage(err)
		f.state.Error = &msg
		f.state.Answer = nil
	} else {
		a := answer
		f.state.Answer = &a
		f.state.Error = nil
	}
	f.state.Loading = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	hook := f.OnSettled
	f.mu.Unlock()

	fields := []zap.Field{
		zap.Uint64("seq", t.Seq),
		zap.Duration("elapsed", time.Since(t.start)),
	}
	if err != nil {
		logger.Warn("submission failed", append(fields, zap.String("kind", api.Kind(err)), zap.Error(err))...)
	} else {
		logger.Info("submission answered", append(fields, zap.Int("answer_len", len(answer)))...)
	}

	if hook != nil {
		hook(Outcome{Seq: t.Seq, Prompt: t.Prompt, Answer: answer, Err: err})
	}
	return true
}

// Cancel 取消进行中的提交。Loading 立即清除，迟到的结果会被丢弃。
func (f *Flow) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.Loading {
		return false
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	// 让进行中的 Ticket 过期
	f.seq++
	f.state.Loading = false
	logger.Info("submission cancelled", zap.Uint64("seq", f.seq-1))
	return true
}

// Run 执行 Ticket 对应的请求并应用结果。Loading 在任何退出路径上都会清除，包括 Asker panic。
func (f *Flow) Run(t Ticket) (answer string, applied bool, err error) {
	answer, err = f.ask(t)
	return answer, f.Settle(t, answer, err), err
}

func (f *Flow) ask(t Ticket) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("asker panicked", zap.Uint64("seq", t.Seq), zap.Any("panic", r))
			answer, err = "", errPanic
		}
	}()
	return f.asker.Ask(t.Ctx, t.Prompt)
}

// Submit 同步执行一次完整提交：Begin → Ask → Settle
func (f *Flow) Submit(ctx context.Context, prompt string) (State, bool) {
	t, ok := f.Begin(ctx, prompt)
	if !ok {
		return f.Snapshot(), false
	}
	f.Run(t)
	return f.Snapshot(), true
}
