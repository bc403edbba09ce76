package mesh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pipelineorganics/aigeo/internal/logger"
	"github.com/pipelineorganics/aigeo/internal/utils"
	"go.uber.org/zap"
)

// Loader 从本地路径或 http(s) URL 读取 STL。每个来源只解析一次，
// Load 返回副本，调用方可以直接原地归一化。
type Loader struct {
	client utils.Doer

	mu    sync.Mutex
	cache map[string]*Geometry
}

// NewLoader 创建 Loader，client 为 nil 时使用 http.DefaultClient
func NewLoader(client utils.Doer) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, cache: make(map[string]*Geometry)}
}

// Load 返回 src 对应几何体的独立副本
func (l *Loader) Load(ctx context.Context, src string) (*Geometry, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty mesh source", ErrInvalidSTL)
	}

	l.mu.Lock()
	cached, ok := l.cache[src]
	l.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	start := time.Now()
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading mesh %s: %w", src, err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing mesh %s: %w", src, err)
	}

	l.mu.Lock()
	l.cache[src] = g
	l.mu.Unlock()

	box := g.BoundingBox()
	logger.Info("mesh loaded",
		zap.String("source", src),
		zap.Int("triangles", g.TriangleCount()),
		zap.Float32s("bbox_min", []float32{box.Min.X, box.Min.Y, box.Min.Z}),
		zap.Float32s("bbox_max", []float32{box.Max.X, box.Max.Y, box.Max.Z}),
		zap.Duration("elapsed", time.Since(start)),
	)

	return g.Clone(), nil
}

// Forget 清除缓存，下次 Load 会重新读取
func (l *Loader) Forget(src string) {
	l.mu.Lock()
	delete(l.cache, strings.TrimSpace(src))
	l.mu.Unlock()
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	if !isURL(src) {
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func isURL(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// LoadNormalized 加载并归一化副本
func (l *Loader) LoadNormalized(ctx context.Context, src string) (*Geometry, error) {
	g, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	Normalize(g)
	return g, nil
}
