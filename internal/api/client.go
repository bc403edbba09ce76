package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pipelineorganics/aigeo/internal/logger"
	"github.com/pipelineorganics/aigeo/internal/utils"
	"go.uber.org/zap"
)

const (
	askPath   = "/ask-ai"
	uiOrigin  = "ai-geo-ui"
	mediaText = "text/plain"
)

// 全局共享的HTTP客户端，实现连接池化
var (
	sharedHTTPClient *http.Client
	httpClientOnce   sync.Once
)

// getSharedHTTPClient 返回共享的HTTP客户端实例。
// 不设置整体超时：请求时长由调用方的 context 决定。
func getSharedHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		sharedHTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	})
	return sharedHTTPClient
}

type Client struct {
	apiBase string
	timeout time.Duration
	client  utils.Doer
}

type Option func(*Client)

// WithDoer 替换底层 HTTP 客户端（测试中使用）
func WithDoer(d utils.Doer) Option {
	return func(c *Client) {
		c.client = d
	}
}

// WithTimeout 为每次请求设置超时；0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient 创建 /ask-ai 客户端。apiBase 为空时客户端仍可创建，
// 但每次 Ask 都会返回 ErrConfigurationMissing。
func NewClient(apiBase string, opts ...Option) *Client {
	c := &Client{
		apiBase: strings.TrimSpace(apiBase),
		client:  getSharedHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) APIBase() string {
	return c.apiBase
}

// Endpoint 返回完整的请求地址
func (c *Client) Endpoint() string {
	return strings.TrimRight(c.apiBase, "/") + askPath
}

// Ask 把去除首尾空白的 prompt 以纯文本 POST 到 {apiBase}/ask-ai，
// 成功时原样返回响应体。不做重试。
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if c.apiBase == "" {
		return "", ErrConfigurationMissing
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body := strings.TrimSpace(prompt)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), strings.NewReader(body))
	if err != nil {
		// 基地址无法解析为 URL
		return "", err
	}

	httpReq.Header.Set("Content-Type", mediaText)
	httpReq.Header.Set("X-Ui-Origin", uiOrigin)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		logger.Warn("ask-ai request failed", zap.String("endpoint", c.Endpoint()), zap.Error(err))
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	text := string(data)

	logger.Debug("ask-ai response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: text}
	}

	return text, nil
}
