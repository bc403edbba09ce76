// Package session holds the prompt/answer state shown by the view and the
// submission flow that is the only writer of that state.
package session

// State 是界面显示的会话状态。
// 请求前和请求进行中 Answer、Error 都为 nil；请求完成后恰好一个非 nil。
type State struct {
	Prompt  string
	Loading bool
	Answer  *string
	Error   *string
}

// HasAnswer 是否已有回答
func (s State) HasAnswer() bool {
	return s.Answer != nil
}

// HasError 是否有错误信息
func (s State) HasError() bool {
	return s.Error != nil
}

// AnswerText 返回回答文本，没有回答时返回空串
func (s State) AnswerText() string {
	if s.Answer == nil {
		return ""
	}
	return *s.Answer
}

// ErrorText 返回错误文本，没有错误时返回空串
func (s State) ErrorText() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

func (s State) clone() State {
	out := s
	if s.Answer != nil {
		a := *s.Answer
		out.Answer = &a
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	return out
}
