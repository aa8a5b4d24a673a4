// Package proxy serves the chat product over localhost with the response
// headers that block iframe embedding removed, so the product can render
// inside the app's webview.
package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// DefaultUpstream is the chat product the shell embeds.
const DefaultUpstream = "https://gemini.google.com"

// strippedHeaders are removed from proxied responses to allow embedding.
var strippedHeaders = []string{
	"X-Frame-Options",
	"Content-Security-Policy",
	"X-Content-Type-Options",
}

// Server proxies requests to the upstream chat product on a loopback port.
type Server struct {
	upstream string
	client   *http.Client
	srv      *http.Server
	ln       net.Listener
}

// New creates a proxy for upstream. Call Start before URL.
func New(upstream string) (*Server, error) {
	if upstream == "" {
		upstream = DefaultUpstream
	}
	upstream = strings.TrimRight(upstream, "/")

	// Session cookies must survive across requests or the product's login
	// flow breaks.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Server{
		upstream: upstream,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Start begins listening on a loopback port.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("proxy serve", "error", err)
		}
	}()

	slog.Info("embed proxy started", "url", s.URL(), "upstream", s.upstream)
	return nil
}

// URL returns the loopback base URL. Valid after Start.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close stops the listener.
func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// ServeHTTP fetches the requested resource from the upstream product,
// strips the embedding-hostile headers, and relays the rest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := s.upstream + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		http.Error(w, "internal proxy error", http.StatusInternalServerError)
		return
	}
	copyRequestHeaders(req.Header, r.Header)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("proxy upstream request", "url", target, "error", err)
		http.Error(w, "failed to fetch from upstream", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		if isStripped(name) {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Debug("proxy copy body", "url", target, "error", err)
	}
}

func isStripped(name string) bool {
	for _, h := range strippedHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

// copyRequestHeaders forwards client headers except hop-by-hop ones.
func copyRequestHeaders(dst, src http.Header) {
	for name, values := range src {
		switch strings.ToLower(name) {
		case "connection", "keep-alive", "transfer-encoding", "upgrade", "host", "cookie":
			// The proxy's own cookie jar manages the upstream session.
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
