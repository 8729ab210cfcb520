package fingerprint

import (
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// LanguageUnknown is returned whenever detection cannot produce a confident
// answer. Detection is best-effort and never fails the pipeline.
const LanguageUnknown = "unknown"

// minLettersForDetection guards against classifying emoji-only or numeric
// snippets, which the detector gets wrong more often than not.
const minLettersForDetection = 6

type languageDetector interface {
	DetectLanguageOf(text string) (lingua.Language, bool)
}

func newLinguaDetector() languageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithPreloadedLanguageModels().
		Build()
}

// DetectLanguage returns the ISO 639-1 code of the text's language, or
// "unknown" when no detector is configured or the text is too short.
func (f *Fingerprinter) DetectLanguage(text string) string {
	if f.detector == nil {
		return LanguageUnknown
	}

	sample := strings.TrimSpace(text)
	if sample == "" {
		return LanguageUnknown
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLettersForDetection {
		return LanguageUnknown
	}

	language, exists := f.detector.DetectLanguageOf(sample)
	if !exists {
		return LanguageUnknown
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return LanguageUnknown
	}
	return code
}
