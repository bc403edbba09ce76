package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pipelineorganics/aigeo/internal/config"
	"github.com/pipelineorganics/aigeo/internal/mesh"
	"github.com/pipelineorganics/aigeo/internal/utils"
	"github.com/stretchr/testify/require"
)

const cubeCornerSTL = `solid corner
facet normal 0 0 1
 outer loop
  vertex 2 2 2
  vertex 6 2 2
  vertex 2 6 2
 endloop
endfacet
facet normal 0 0 1
 outer loop
  vertex 6 2 2
  vertex 6 6 4
  vertex 2 6 2
 endloop
endfacet
endsolid corner
`

// isolate 隔离配置目录和 AIGEO_ 环境变量
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"AIGEO_API_BASE", "AIGEO_REQUEST_TIMEOUT", "AIGEO_MESH_SOURCE",
		"AIGEO_HISTORY_LIMIT", "AIGEO_LOG_LEVEL", "AIGEO_LOG_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Setenv("AIGEO_CONFIG_HOME", dir)
	return dir
}

// run 执行命令行，返回 stdout、stderr 和错误
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &stdout
	cmd.ErrWriter = &stderr
	err := cmd.Run(context.Background(), append([]string{"aigeo"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestAskPrintsAnswer(t *testing.T) {
	req := require.New(t)
	dir := isolate(t)

	var gotBody, gotOrigin string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotOrigin = r.Header.Get("X-Ui-Origin")
		w.Write([]byte("Use a gyroid with 2 mm cells"))
	}))
	defer server.Close()
	t.Setenv("AIGEO_API_BASE", server.URL)

	stdout, _, err := run(t, "ask", "best", "TPMS", "electrode")

	req.NoError(err)
	req.Equal("Use a gyroid with 2 mm cells\n", stdout)
	req.Equal("best TPMS electrode", gotBody)
	req.Equal("ai-geo-ui", gotOrigin)

	// 结果写入历史文件
	entries, err := utils.NewHistory(filepath.Join(dir, "history.json"), 0).Load()
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal("best TPMS electrode", entries[0].Prompt)
	req.Equal("Use a gyroid with 2 mm cells", entries[0].Answer)
}

func TestAskWithoutAPIBase(t *testing.T) {
	req := require.New(t)
	isolate(t)

	stdout, stderr, err := run(t, "ask", "tell me")

	req.ErrorIs(err, errReported)
	req.Empty(stdout)
	req.Equal("API not configured. Set AIGEO_API_BASE.\n", stderr)
}

func TestAskHTTPErrorGoesToStderr(t *testing.T) {
	req := require.New(t)
	isolate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("designer is asleep"))
	}))
	defer server.Close()
	t.Setenv("AIGEO_API_BASE", server.URL)

	_, stderr, err := run(t, "ask", "tell me")

	req.ErrorIs(err, errReported)
	req.Equal("designer is asleep\n", stderr)
}

func TestAskRequiresPrompt(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "ask", "   ")
	require.ErrorContains(t, err, "usage")
}

func TestAskExportsHTML(t *testing.T) {
	req := require.New(t)
	isolate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("**Schwarz P** lattice"))
	}))
	defer server.Close()
	t.Setenv("AIGEO_API_BASE", server.URL)

	out := filepath.Join(t.TempDir(), "answer.html")
	_, _, err := run(t, "ask", "--html", out, "tell me")
	req.NoError(err)

	data, err := os.ReadFile(out)
	req.NoError(err)
	req.Contains(string(data), "<strong>Schwarz P</strong>")
}

func TestMeshInfo(t *testing.T) {
	req := require.New(t)
	isolate(t)
	src := filepath.Join(t.TempDir(), "corner.stl")
	req.NoError(os.WriteFile(src, []byte(cubeCornerSTL), 0644))

	stdout, _, err := run(t, "mesh", "info", src)

	req.NoError(err)
	req.Contains(stdout, "name:   corner")
	req.Contains(stdout, "original")
	req.Contains(stdout, "center:    (4, 4, 3)")
	req.Contains(stdout, "normalized")
	req.Contains(stdout, "center:    (0, 0, 0)")
	req.Contains(stdout, "size:      1 x 1 x 0.5")
}

func TestMeshNormalizeWritesBinarySTL(t *testing.T) {
	req := require.New(t)
	isolate(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "corner.stl")
	out := filepath.Join(dir, "unit.stl")
	req.NoError(os.WriteFile(src, []byte(cubeCornerSTL), 0644))

	stdout, _, err := run(t, "mesh", "normalize", "-o", out, src)
	req.NoError(err)
	req.Contains(stdout, "wrote 2 triangles")

	data, err := os.ReadFile(out)
	req.NoError(err)
	req.Len(data, 80+4+2*50)

	g, err := mesh.Parse(data)
	req.NoError(err)
	box := g.BoundingBox()
	req.InDelta(1.0, box.MaxDim(), 1e-6)
	req.InDelta(0.0, box.Center().Z, 1e-6)
}

func TestMeshUsesConfiguredSource(t *testing.T) {
	req := require.New(t)
	isolate(t)
	src := filepath.Join(t.TempDir(), "corner.stl")
	req.NoError(os.WriteFile(src, []byte(cubeCornerSTL), 0644))

	stdout, _, err := run(t, "--mesh", src, "mesh", "info")
	req.NoError(err)
	req.Contains(stdout, "source: "+src)
}

func TestMeshInfoMissingFile(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "mesh", "info", filepath.Join(t.TempDir(), "nope.stl"))
	require.Error(t, err)
}

func TestConfigSetAPIAndShow(t *testing.T) {
	req := require.New(t)
	dir := isolate(t)

	stdout, _, err := run(t, "config", "set-api", "https://designer.test/api")
	req.NoError(err)
	req.Contains(stdout, filepath.Join(dir, "config.yaml"))

	cfg, err := config.LoadConfig()
	req.NoError(err)
	req.Equal("https://designer.test/api", cfg.APIBase)

	stdout, _, err = run(t, "config", "show")
	req.NoError(err)
	req.Contains(stdout, "# API: https://designer.test/api")
	req.Contains(stdout, "api_base: https://designer.test/api")
}

func TestConfigSetAPIRejectsInvalidURL(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "config", "set-api", "not a url")
	require.Error(t, err)
}

func TestConfigShowWithoutAPIBase(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, stdout, "# API: not set")
}

func TestRootOutsideTerminalPrintsHint(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t)
	require.NoError(t, err)
	require.Contains(t, stdout, "aigeo ask <prompt>")
	require.Contains(t, stdout, "API: not set")
}

func TestHistoryRecordsErrors(t *testing.T) {
	req := require.New(t)
	dir := isolate(t)

	_, _, err := run(t, "ask", "tell me")
	req.Error(err)

	data, err := os.ReadFile(filepath.Join(dir, "history.json"))
	req.NoError(err)
	var entries []utils.HistoryEntry
	req.NoError(json.Unmarshal(data, &entries))
	req.Len(entries, 1)
	req.True(strings.HasPrefix(entries[0].Error, "API not configured"))
	req.NotEmpty(entries[0].ID)
}
