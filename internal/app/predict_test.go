package app

import (
	"context"
	"testing"

	"github.com/glintapp/glint/cache"
	"github.com/glintapp/glint/prediction"
)

// mockLocal implements LocalPredictor for testing.
type mockLocal struct {
	status prediction.Status
	output string
	calls  int
}

func (m *mockLocal) Predict(_ context.Context, _ string) string {
	m.calls++
	return m.output
}

func (m *mockLocal) Status() prediction.Status {
	return m.status
}

// mockCompleter implements llm.Completer for testing.
type mockCompleter struct {
	response string
	err      error
	calls    int
}

func (m *mockCompleter) Complete(_ context.Context, _ string, _ int) (string, error) {
	m.calls++
	return m.response, m.err
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPredictorBlankInput(t *testing.T) {
	local := &mockLocal{status: prediction.StatusReady, output: "never"}
	p := NewPredictor(nil, local, nil)

	for _, input := range []string{"", "   ", "\t\n"} {
		got := p.Predict(context.Background(), input)
		if got.Text != "" {
			t.Errorf("Predict(%q).Text = %q, want empty", input, got.Text)
		}
	}
	if local.calls != 0 {
		t.Errorf("local predictor called %d times for blank input", local.calls)
	}
}

func TestPredictorLocal(t *testing.T) {
	local := &mockLocal{status: prediction.StatusReady, output: " world"}
	cloud := &mockCompleter{response: "unused"}
	p := NewPredictor(nil, local, cloud)

	got := p.Predict(context.Background(), "hello")
	if got.Text != " world" {
		t.Errorf("Text = %q, want %q", got.Text, " world")
	}
	if got.Source != "local" {
		t.Errorf("Source = %q, want local", got.Source)
	}
	if got.ID == "" {
		t.Error("suggestion ID is empty")
	}
	if cloud.calls != 0 {
		t.Error("cloud completer called despite a ready local model")
	}
}

func TestPredictorLocalMissSkipsCloud(t *testing.T) {
	local := &mockLocal{status: prediction.StatusReady, output: ""}
	cloud := &mockCompleter{response: "cloudy"}
	p := NewPredictor(nil, local, cloud)

	got := p.Predict(context.Background(), "hello")
	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
	if cloud.calls != 0 {
		t.Error("cloud completer called after a ready-model miss")
	}
}

func TestPredictorCloudFallback(t *testing.T) {
	local := &mockLocal{status: prediction.StatusNotDownloaded}
	cloud := &mockCompleter{response: " there"}
	p := NewPredictor(nil, local, cloud)

	got := p.Predict(context.Background(), "hello")
	if got.Text != " there" {
		t.Errorf("Text = %q, want %q", got.Text, " there")
	}
	if got.Source != "cloud" {
		t.Errorf("Source = %q, want cloud", got.Source)
	}
	if local.calls != 0 {
		t.Error("local predictor called while not ready")
	}
}

func TestPredictorCloudErrorAbsorbed(t *testing.T) {
	cloud := &mockCompleter{err: context.DeadlineExceeded}
	p := NewPredictor(nil, nil, cloud)

	got := p.Predict(context.Background(), "hello")
	if got.Text != "" {
		t.Errorf("Text = %q, want empty on cloud error", got.Text)
	}
}

func TestPredictorNoBackends(t *testing.T) {
	p := NewPredictor(nil, nil, nil)

	got := p.Predict(context.Background(), "hello")
	if got.Text != "" {
		t.Errorf("Text = %q, want empty with no backends", got.Text)
	}
}

func TestPredictorCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	local := &mockLocal{status: prediction.StatusReady, output: " completion"}
	p := NewPredictor(c, local, nil)

	first := p.Predict(context.Background(), "some text")
	if first.Source != "local" {
		t.Fatalf("first Source = %q, want local", first.Source)
	}

	second := p.Predict(context.Background(), "some text")
	if second.Source != "cache" {
		t.Errorf("second Source = %q, want cache", second.Source)
	}
	if second.Text != " completion" {
		t.Errorf("second Text = %q, want %q", second.Text, " completion")
	}
	if local.calls != 1 {
		t.Errorf("local predictor called %d times, want 1", local.calls)
	}

	// Surrounding whitespace must not fragment the cache.
	third := p.Predict(context.Background(), "  some text  ")
	if third.Source != "cache" {
		t.Errorf("whitespace variant Source = %q, want cache", third.Source)
	}
}

func TestPredictorUnsupportedLanguage(t *testing.T) {
	local := &mockLocal{status: prediction.StatusReady, output: "never"}
	p := NewPredictor(nil, local, nil)

	// Digits classify as no language at all; long enough to trip the gate.
	got := p.Predict(context.Background(), "1234567890 0987654321")
	if got.Text != "" {
		t.Errorf("Text = %q, want empty for undetectable input", got.Text)
	}
	if local.calls != 0 {
		t.Error("local predictor called for undetectable input")
	}
}

func TestPredictorShortInputSkipsDetection(t *testing.T) {
	local := &mockLocal{status: prediction.StatusReady, output: "ok"}
	p := NewPredictor(nil, local, nil)

	got := p.Predict(context.Background(), "42")
	if got.Text != "ok" {
		t.Errorf("Text = %q, want %q for short input", got.Text, "ok")
	}
}
