package api

import (
	"errors"
	"fmt"
	"strings"
)

// GenericErrorMessage 无法得到更具体信息时显示给用户的文本
const GenericErrorMessage = "Something went wrong."

// ErrConfigurationMissing 未配置 API 基地址，不会发出任何网络请求
var ErrConfigurationMissing = errors.New("API not configured. Set AIGEO_API_BASE.")

// HTTPError 表示非 2xx 响应。响应体按纯文本处理。
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// NetworkError 表示请求未能完成（连接失败、读取响应失败、被取消等）
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage 把任意错误转换为界面上显示的一行文本
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); strings.TrimSpace(msg) != "" {
		return msg
	}
	return GenericErrorMessage
}

// Kind 返回错误类别，用于日志
func Kind(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigurationMissing):
		return "configuration_missing"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "generic"
	}
}
