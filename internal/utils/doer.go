package utils

import "net/http"

// Doer 接口，*http.Client 和测试桩都实现它
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}
