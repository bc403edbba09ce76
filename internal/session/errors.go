package session

import "errors"

// errPanic 的文本为空，界面会显示通用错误信息
var errPanic = errors.New("")
