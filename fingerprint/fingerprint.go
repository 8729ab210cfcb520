package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"originstamp/types"

	"go.uber.org/zap"
)

// Fingerprinter computes deterministic content fingerprints for reports. It
// owns the NER capability, the pattern matchers and the language detector;
// construct one at startup and pass it through the pipeline.
type Fingerprinter struct {
	extractor EntityExtractor
	detector  languageDetector
	logger    *zap.Logger

	urlStripRe *regexp.Regexp
	mentionRe  *regexp.Regexp
	hashtagRe  *regexp.Regexp
	punctRe    *regexp.Regexp
	urlFindRe  *regexp.Regexp
}

// EntityExtractor is the pluggable named-entity capability. Absence of a
// model means an empty result, never an error that stops the pipeline.
type EntityExtractor interface {
	Extract(text string) ([]types.Entity, error)
}

// New builds a Fingerprinter. extractor may be nil, in which case only the
// pattern matchers contribute entities. detectLanguage controls whether the
// lingua detector is built (it loads language models into memory).
func New(extractor EntityExtractor, detectLanguage bool, logger *zap.Logger) *Fingerprinter {
	f := &Fingerprinter{
		extractor:  extractor,
		logger:     logger,
		urlStripRe: regexp.MustCompile(`http\S+|www\S+`),
		mentionRe:  regexp.MustCompile(`@(\w+)`),
		hashtagRe:  regexp.MustCompile(`#(\w+)`),
		punctRe:    regexp.MustCompile(`[^\p{L}\p{N}_\s]`),
		urlFindRe:  regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+"),
	}
	if detectLanguage {
		f.detector = newLinguaDetector()
	}
	return f
}

// Normalize lowercases, strips URLs and @mentions, unwraps #tags, removes
// punctuation and collapses whitespace. Idempotent.
func (f *Fingerprinter) Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = f.urlStripRe.ReplaceAllString(text, "")
	text = f.mentionRe.ReplaceAllString(text, "")
	text = f.hashtagRe.ReplaceAllString(text, "$1")
	text = f.punctRe.ReplaceAllString(text, "")
	// Punctuation removal can fuse fragments into a fresh http/www token
	// ("ht.tp" becomes "http"); strip again so a repeat pass finds nothing.
	text = f.urlStripRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// HashText returns the hex SHA-256 of the normalized text.
func (f *Fingerprinter) HashText(text string) string {
	sum := sha256.Sum256([]byte(f.Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// GenerateEventHash combines normalized text, key entity values and canonical
// URLs into a composite fingerprint. Entity and URL discovery order does not
// affect the result.
func (f *Fingerprinter) GenerateEventHash(text string, entities []types.Entity, canonicalURLs []string) string {
	norm := f.Normalize(text)

	keyEntities := make([]string, 0, len(entities))
	for _, e := range entities {
		if types.KeyEntityTypes[e.Type] {
			keyEntities = append(keyEntities, strings.ToLower(e.Value))
		}
	}
	sort.Strings(keyEntities)

	urls := make([]string, len(canonicalURLs))
	copy(urls, canonicalURLs)
	sort.Strings(urls)

	combined := norm + "|" + strings.Join(keyEntities, "|") + "|" + strings.Join(urls, "|")
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// ExtractHashtags returns the bare tags mentioned in the text.
func (f *Fingerprinter) ExtractHashtags(text string) []string {
	return f.captureAll(f.hashtagRe, text)
}

// ExtractMentions returns the @-mentioned names in the text.
func (f *Fingerprinter) ExtractMentions(text string) []string {
	return f.captureAll(f.mentionRe, text)
}

func (f *Fingerprinter) captureAll(re *regexp.Regexp, text string) []string {
	if text == "" {
		return nil
	}
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Fingerprint computes the full content fingerprint for a report text.
func (f *Fingerprinter) Fingerprint(text string) types.Fingerprint {
	entities := f.ExtractEntities(text)
	urls := f.ExtractURLs(text)

	canonical := make([]string, 0, len(urls))
	for _, u := range urls {
		canonical = append(canonical, u.Canonical)
	}

	return types.Fingerprint{
		TextNormalized: f.Normalize(text),
		TextHash:       f.HashText(text),
		EventHash:      f.GenerateEventHash(text, entities, canonical),
		Entities:       entities,
		URLs:           urls,
		CanonicalURLs:  canonical,
		Language:       f.DetectLanguage(text),
		Hashtags:       f.ExtractHashtags(text),
		Mentions:       f.ExtractMentions(text),
	}
}
