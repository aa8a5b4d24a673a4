package app

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/glintapp/glint/cache"
	"github.com/glintapp/glint/internal/types"
	"github.com/glintapp/glint/langdetect"
	"github.com/glintapp/glint/llm"
	"github.com/glintapp/glint/prediction"
)

// cloudTimeout bounds the fallback completion call. It is looser than the
// local inference deadline because a network round trip is expected.
const cloudTimeout = 2 * time.Second

const cloudMaxTokens = 24

// detectMinRunes is the shortest input we trust language detection on.
// Short prefixes classify as unknown too often to be a useful gate.
const detectMinRunes = 12

// LocalPredictor is the slice of the model manager the predictor needs.
type LocalPredictor interface {
	Predict(ctx context.Context, text string) string
	Status() prediction.Status
}

// Predictor produces ghost-text suggestions for the quick-chat input.
// Lookup order is cache, local model, then the optional cloud fallback.
// Every path degrades to an empty suggestion rather than an error; the
// input field simply shows nothing.
type Predictor struct {
	cache *cache.Cache
	local LocalPredictor
	cloud llm.Completer
}

// NewPredictor creates a Predictor. cache and cloud may be nil.
func NewPredictor(c *cache.Cache, local LocalPredictor, cloud llm.Completer) *Predictor {
	return &Predictor{cache: c, local: local, cloud: cloud}
}

// SetCloud swaps the cloud fallback, for when the credential changes at
// runtime. Not safe to call concurrently with Predict.
func (p *Predictor) SetCloud(c llm.Completer) {
	p.cloud = c
}

// Predict returns a suggestion for text, or one with empty Text when
// nothing useful can be offered.
func (p *Predictor) Predict(ctx context.Context, text string) types.Suggestion {
	none := types.Suggestion{ID: uuid.New().String()}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return none
	}

	if !p.supported(trimmed) {
		return none
	}

	key := cache.GenerateKey("suggest", trimmed)
	if entry, ok := p.getCached(key); ok {
		return types.Suggestion{ID: none.ID, Text: entry.Text, Source: "cache"}
	}

	if p.local != nil && p.local.Status() == prediction.StatusReady {
		if out := p.local.Predict(ctx, text); out != "" {
			p.setCache(key, out, "local")
			return types.Suggestion{ID: none.ID, Text: out, Source: "local"}
		}
		// A ready model that produced nothing is authoritative; falling
		// through to the cloud here would double the latency on every miss.
		return none
	}

	if p.cloud != nil {
		cctx, cancel := context.WithTimeout(ctx, cloudTimeout)
		defer cancel()

		out, err := p.cloud.Complete(cctx, text, cloudMaxTokens)
		if err != nil {
			slog.Warn("cloud completion", "error", err)
			return none
		}
		if out != "" {
			p.setCache(key, out, "cloud")
			return types.Suggestion{ID: none.ID, Text: out, Source: "cloud"}
		}
	}

	return none
}

// supported reports whether the input looks like a language the models
// handle. Inputs too short to classify pass through.
func (p *Predictor) supported(text string) bool {
	if utf8.RuneCountInString(text) < detectMinRunes {
		return true
	}
	code, _ := langdetect.Detect(text)
	return code != "auto"
}

func (p *Predictor) getCached(key string) (*cache.Entry, bool) {
	if p.cache == nil {
		return nil, false
	}
	return p.cache.Get(key)
}

func (p *Predictor) setCache(key, text, source string) {
	if p.cache == nil {
		return
	}

	entry := &cache.Entry{Text: text, Source: source, CreatedAt: time.Now()}

	// Ignore error - caching is best effort
	_ = p.cache.Set(key, entry, cache.DefaultTTL)
}
