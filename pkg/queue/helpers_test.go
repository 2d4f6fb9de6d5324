package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/promptlens/pkg/types"
	"github.com/stretchr/testify/mock"
)

// fakeClock fires After channels only when the test advances it.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []fakeWaiter
}

type fakeWaiter struct {
	at time.Time
	ch chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, fakeWaiter{at: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves time forward and fires every due waiter.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.at.After(c.now) {
			w.ch <- c.now
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// waitForWaiters blocks until n After calls are pending.
func (c *fakeClock) waitForWaiters(t *testing.T, n int) {
	t.Helper()
	eventually(t, func() bool { return c.pending() >= n }, "clock never reached %d waiters", n)
}

func eventually(t *testing.T, cond func() bool, msg string, args ...interface{}) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf(msg, args...)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDone(t *testing.T, p *Processor) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("drain loop did not exit")
	}
}

// recordingSink keeps every notification in order.
type recordingSink struct {
	mu        sync.Mutex
	calls     []string
	progress  []float64
	results   []types.PromptResult
	usage     []types.UsageTotals
	completed int
	starts    []string
	stops     []string
}

func (s *recordingSink) OnProgress(f float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "progress")
	s.progress = append(s.progress, f)
}

func (s *recordingSink) OnResult(r types.PromptResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "result")
	s.results = append(s.results, r)
}

func (s *recordingSink) OnUsageUpdate(u types.UsageTotals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "usage")
	s.usage = append(s.usage, u)
}

func (s *recordingSink) OnCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "completed")
	s.completed++
}

func (s *recordingSink) OnRunStart(runID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, runID)
}

func (s *recordingSink) OnRunStopped(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops = append(s.stops, runID)
}

func (s *recordingSink) resultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// mockGenerator is a testify mock for llm.Generator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error) {
	args := m.Called(ctx, model, prompt, image)
	return args.String(0), args.Error(1)
}

// gatedGenerator blocks each call until the test releases it.
type gatedGenerator struct {
	calls   chan types.ImageRecord
	release chan string
}

func newGatedGenerator() *gatedGenerator {
	return &gatedGenerator{calls: make(chan types.ImageRecord, 10), release: make(chan string)}
}

func (g *gatedGenerator) Generate(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error) {
	g.calls <- image
	return <-g.release, nil
}

func images(srcs ...string) []types.ImageRecord {
	out := make([]types.ImageRecord, len(srcs))
	for i, src := range srcs {
		out[i] = types.ImageRecord{Src: src, Data: []byte(src), MimeType: "image/png"}
	}
	return out
}

func validConfig() RunConfig {
	return RunConfig{APIKey: "key", Model: "gemini-1.5-flash", PromptTemplate: "Describe it."}
}
