// Package langdetect identifies the language of quick-chat input so the
// predictor can skip languages the local model does not cover.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	// The lingua-go fork ships language models as separate packages that
	// register themselves on import; one is needed per detected language.
	_ "github.com/pemistahl/lingua-go/language-models/de"
	_ "github.com/pemistahl/lingua-go/language-models/en"
	_ "github.com/pemistahl/lingua-go/language-models/es"
	_ "github.com/pemistahl/lingua-go/language-models/fr"
	_ "github.com/pemistahl/lingua-go/language-models/ja"
	_ "github.com/pemistahl/lingua-go/language-models/ko"
	_ "github.com/pemistahl/lingua-go/language-models/pt"
	_ "github.com/pemistahl/lingua-go/language-models/ru"
	_ "github.com/pemistahl/lingua-go/language-models/zh"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// The detector is expensive to build; share one across calls.
var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Chinese,
			lingua.Japanese,
			lingua.Korean,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
			lingua.Russian,
		).
		Build()
})

// Detect returns the ISO 639-1 code and English display name for text's
// language. Returns ("auto", "") when the language cannot be determined.
func Detect(text string) (code, name string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "auto", ""
	}

	lang, ok := detector().DetectLanguageOf(text)
	if !ok {
		return "auto", ""
	}

	code = strings.ToLower(lang.IsoCode639_1().String())
	tag, err := language.Parse(code)
	if err != nil {
		return code, lang.String()
	}
	return code, display.English.Languages().Name(tag)
}
