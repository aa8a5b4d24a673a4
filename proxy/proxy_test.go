package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newProxyFor(t *testing.T, upstream string) *Server {
	t.Helper()
	s, err := New(upstream)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProxyStripsEmbeddingHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html>chat</html>")
	}))
	defer upstream.Close()

	s := newProxyFor(t, upstream.URL)

	resp, err := http.Get(s.URL() + "/app")
	if err != nil {
		t.Fatalf("get through proxy: %v", err)
	}
	defer resp.Body.Close()

	for _, h := range strippedHeaders {
		if got := resp.Header.Get(h); got != "" {
			t.Errorf("header %s = %q, want stripped", h, got)
		}
	}
	if got := resp.Header.Get("Content-Type"); got != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<html>chat</html>" {
		t.Errorf("body = %q, want upstream body", body)
	}
}

func TestProxyForwardsPathAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	}))
	defer upstream.Close()

	s := newProxyFor(t, upstream.URL)

	resp, err := http.Get(s.URL() + "/app/chats?hl=en")
	if err != nil {
		t.Fatalf("get through proxy: %v", err)
	}
	resp.Body.Close()

	if gotPath != "/app/chats" {
		t.Errorf("upstream path = %q, want /app/chats", gotPath)
	}
	if gotQuery != "hl=en" {
		t.Errorf("upstream query = %q, want hl=en", gotQuery)
	}
}

func TestProxyRelaysStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	s := newProxyFor(t, upstream.URL)

	resp, err := http.Get(s.URL() + "/missing")
	if err != nil {
		t.Fatalf("get through proxy: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	s := newProxyFor(t, "http://127.0.0.1:1")

	resp, err := http.Get(s.URL() + "/app")
	if err != nil {
		t.Fatalf("get through proxy: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}
