package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/russross/blackfriday/v2"
)

// RenderHTML 把回答当作 Markdown 渲染成完整的 HTML 文档
func RenderHTML(prompt, answer string, at time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>PO • AI Geometry</title>\n</head>\n<body>\n")
	fmt.Fprintf(&buf, "<p><small>%s</small></p>\n", at.Format(time.RFC3339))
	fmt.Fprintf(&buf, "<blockquote>%s</blockquote>\n", html.EscapeString(prompt))
	buf.Write(blackfriday.Run([]byte(answer), blackfriday.WithRenderer(newRenderer())))
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

// newRenderer 丢弃回答中的原始 HTML，并只保留安全的链接协议
func newRenderer() *blackfriday.HTMLRenderer {
	return blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
	})
}

// ExportHTML 写入 HTML 文件，必要时创建目录
func ExportHTML(path, prompt, answer string) error {
	if answer == "" {
		return fmt.Errorf("没有可导出的回答")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}
	if err := os.WriteFile(path, RenderHTML(prompt, answer, time.Now()), 0644); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}
	return nil
}

// DefaultPath 返回当前目录下带时间戳的导出文件名
func DefaultPath(at time.Time) string {
	return fmt.Sprintf("aigeo-answer-%s.html", at.Format("20060102-150405"))
}
