package scrape

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/promptlens/pkg/collector"
	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/queue"
	"github.com/entrhq/promptlens/pkg/report"
	"github.com/entrhq/promptlens/pkg/types"
)

type generatorFunc func(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error)

func (f generatorFunc) Generate(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error) {
	return f(ctx, model, prompt, image)
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, size, size))))
	return buf.Bytes()
}

func newGalleryServer(t *testing.T) *httptest.Server {
	t.Helper()

	picture := pngBytes(t, 120)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<img src="/a.png" width="120" height="120">
			<img src="/icon.png" width="16" height="16">
			<img src="/b.png" width="120" height="120">
		</body></html>`))
	})
	for _, path := range []string{"/a.png", "/b.png", "/icon.png"} {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(picture)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(pageURL, outDir string) *Config {
	cfg := DefaultConfig()
	cfg.URL = pageURL
	cfg.Pacing = 0
	cfg.ScrapeDelay = 0
	cfg.Artifacts.OutputDir = outDir
	return cfg
}

func runConfig() queue.RunConfig {
	return queue.RunConfig{APIKey: "key", Model: "gemini-1.5-flash", PromptTemplate: "describe"}
}

func TestExecutorRun(t *testing.T) {
	server := newGalleryServer(t)
	outDir := t.TempDir()

	generator := generatorFunc(func(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error) {
		if strings.HasSuffix(image.Src, "/b.png") {
			return "", errors.New("quota exceeded")
		}
		return strings.Repeat("x", 40), nil
	})

	var seen []types.QueueEventType
	cfg := testConfig(server.URL+"/", outDir)
	exec, err := NewExecutor(cfg, runConfig(), collector.NewHTTPPageSource(cfg.URL, server.Client()),
		queue.StaticGenerator(generator),
		WithObserver(func(ev *types.QueueEvent) { seen = append(seen, ev.Type) }))
	require.NoError(t, err)

	summary, err := exec.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, report.StatusCompleted, summary.Status)
	assert.Equal(t, 2, summary.Total)
	require.Len(t, summary.Results, 2)
	assert.True(t, strings.HasSuffix(summary.Results[0].Source.Src, "/a.png"))
	assert.False(t, summary.Results[0].Placeholder)
	assert.True(t, summary.Results[1].Placeholder)
	assert.Equal(t, "Error generating prompt for model gemini-1.5-flash.", summary.Results[1].PromptText)
	assert.Equal(t, 10, summary.Usage.Tokens)

	assert.Equal(t, types.EventTypeRunStart, seen[0])
	assert.Equal(t, types.EventTypeCompleted, seen[len(seen)-1])

	assert.FileExists(t, filepath.Join(outDir, report.ResultsFile))
	assert.FileExists(t, filepath.Join(outDir, report.SummaryFile))
}

func TestExecutorUnreachablePage(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	outDir := t.TempDir()
	cfg := testConfig(server.URL+"/missing", outDir)
	exec, err := NewExecutor(cfg, runConfig(), collector.NewHTTPPageSource(cfg.URL, server.Client()),
		queue.StaticGenerator(generatorFunc(func(context.Context, string, string, types.ImageRecord) (string, error) {
			t.Error("generator must not be called")
			return "", nil
		})))
	require.NoError(t, err)

	summary, err := exec.Run(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindChannel))
	assert.Equal(t, report.StatusFailed, summary.Status)
	assert.FileExists(t, filepath.Join(outDir, report.SummaryFile))
}

func TestExecutorCancel(t *testing.T) {
	server := newGalleryServer(t)

	started := make(chan struct{}, 2)
	generator := generatorFunc(func(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error) {
		started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	})

	cfg := testConfig(server.URL+"/", t.TempDir())
	cfg.Artifacts.Enabled = false
	exec, err := NewExecutor(cfg, runConfig(), collector.NewHTTPPageSource(cfg.URL, server.Client()),
		queue.StaticGenerator(generator))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	done := make(chan *report.RunSummary)
	go func() {
		summary, _ := exec.Run(ctx)
		done <- summary
	}()

	select {
	case summary := <-done:
		assert.Equal(t, report.StatusStopped, summary.Status)
		assert.Empty(t, summary.Results)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

func TestNewExecutorRejectsMissingAPIKey(t *testing.T) {
	cfg := testConfig("https://example.com/", t.TempDir())
	_, err := NewExecutor(cfg, queue.RunConfig{Model: "m"}, collector.DocumentSource{},
		queue.StaticGenerator(generatorFunc(nil)))

	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConfiguration))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.URL = "" }, wantErr: "url is required"},
		{name: "relative url", mutate: func(c *Config) { c.URL = "/gallery" }, wantErr: "invalid url"},
		{name: "ftp url", mutate: func(c *Config) { c.URL = "ftp://example.com" }, wantErr: "invalid url"},
		{name: "negative pacing", mutate: func(c *Config) { c.Pacing = -time.Second }, wantErr: "pacing"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Concurrency = -1 }, wantErr: "concurrency"},
		{name: "no output dir", mutate: func(c *Config) { c.Artifacts.OutputDir = "" }, wantErr: "output_dir"},
		{name: "bad verbosity", mutate: func(c *Config) { c.Logging.Verbosity = "loud" }, wantErr: "verbosity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.URL = "https://example.com/"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: https://example.com/gallery
render: true
model: gemini-1.5-pro
pacing: 500ms
artifacts:
  enabled: false
logging:
  verbosity: verbose
`), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://example.com/gallery", cfg.URL)
	assert.True(t, cfg.Render)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	assert.Equal(t, 500*time.Millisecond, cfg.Pacing)
	assert.Equal(t, collector.DefaultScrapeDelay, cfg.ScrapeDelay)
	assert.False(t, cfg.Artifacts.Enabled)
	assert.Equal(t, "verbose", cfg.Logging.Verbosity)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

var _ llm.Generator = generatorFunc(nil)
