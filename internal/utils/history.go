package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit 历史文件最多保留的条目数
const DefaultHistoryLimit = 100

type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// History 以 JSON 数组形式把问答记录保存在单个文件中。
// Append 在进程内串行执行，文件通过临时文件加 rename 整体替换，不会出现写了一半的内容。
type History struct {
	mu    sync.Mutex
	path  string
	limit int
}

// NewHistory 创建历史记录存储；limit <= 0 时使用默认值
func NewHistory(path string, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{path: path, limit: limit}
}

// DefaultHistory 使用配置目录下的 history.json
func DefaultHistory(limit int) (*History, error) {
	path, err := ConfigFile("history.json")
	if err != nil {
		return nil, fmt.Errorf("获取历史文件路径失败: %w", err)
	}
	return NewHistory(path, limit), nil
}

func (h *History) Path() string {
	return h.path
}

// Append 追加一条记录并裁剪到 limit 条
func (h *History) Append(prompt, answer, errText string) (HistoryEntry, error) {
	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Prompt:    prompt,
		Answer:    answer,
		Error:     errText,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	history, err := h.Load()
	if err != nil {
		// 损坏的历史文件改名保留，再从空列表开始
		if rerr := os.Rename(h.path, h.path+".corrupt"); rerr != nil && !os.IsNotExist(rerr) {
			return entry, fmt.Errorf("备份损坏的历史文件失败: %w", rerr)
		}
		history = nil
	}

	history = append(history, entry)

	if len(history) > h.limit {
		history = history[len(history)-h.limit:]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return entry, fmt.Errorf("序列化历史失败: %w", err)
	}

	if err := writeFileAtomic(h.path, data); err != nil {
		return entry, fmt.Errorf("写入历史文件失败: %w", err)
	}

	return entry, nil
}

func (h *History) Load() ([]HistoryEntry, error) {
	if _, err := os.Stat(h.path); os.IsNotExist(err) {
		return []HistoryEntry{}, nil
	}

	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("读取历史文件失败: %w", err)
	}

	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("解析历史文件失败: %w", err)
	}

	return history, nil
}

// writeFileAtomic 先写同目录下的临时文件，再 rename 覆盖目标
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
