// Package digest filters newsworthy headlines out of the classified report
// stream, deduplicates them per event, and periodically publishes the single
// most important pending item.
package digest

import (
	"strings"

	"originstamp/types"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Importance score weights.
const (
	keywordPoints     = 10
	entityPoints      = 5
	locationPoints    = 8
	militaryOrgPoints = 15
)

// Filter rejects non-news noise before anything reaches the pending queue.
// Keyword and phrase matching use an Aho-Corasick automaton so the cost is a
// single pass over the text regardless of list size.
type Filter struct {
	keywords        []string
	keywordMatcher  *ahocorasick.Matcher
	phraseMatcher   *ahocorasick.Matcher
	minTextLength   int
	importanceFloor int
}

// NewFilter builds a filter from lowercased keyword and phrase lists.
func NewFilter(importanceKeywords, nonNewsPhrases []string, minTextLength, importanceFloor int) *Filter {
	keywords := lowerAll(importanceKeywords)
	phrases := lowerAll(nonNewsPhrases)

	f := &Filter{
		keywords:        keywords,
		minTextLength:   minTextLength,
		importanceFloor: importanceFloor,
	}
	if len(keywords) > 0 {
		f.keywordMatcher = ahocorasick.NewStringMatcher(keywords)
	}
	if len(phrases) > 0 {
		f.phraseMatcher = ahocorasick.NewStringMatcher(phrases)
	}
	return f
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Importance scores a headline: matched keyword terms weigh heaviest per
// hit, then military organizations, locations and plain entity count.
func (f *Filter) Importance(text string, entities []types.Entity) int {
	score := 0

	if f.keywordMatcher != nil {
		hits := f.keywordMatcher.Match([]byte(strings.ToLower(text)))
		score += len(hits) * keywordPoints
	}

	score += len(entities) * entityPoints
	for _, e := range entities {
		switch e.Type {
		case types.EntityGPE, types.EntityLocation:
			score += locationPoints
		case types.EntityMilitaryOrg:
			score += militaryOrgPoints
		}
	}
	return score
}

// Reject decides whether a headline is digest-worthy. The returned reason is
// for logging only.
func (f *Filter) Reject(text string, entities []types.Entity) (bool, string) {
	if strings.HasPrefix(text, "RT @") {
		return true, "reshare"
	}
	if strings.HasPrefix(text, "@") {
		return true, "reply"
	}

	if len(cleanText(text)) < f.minTextLength {
		return true, "too short"
	}

	if f.phraseMatcher != nil {
		if hits := f.phraseMatcher.Match([]byte(strings.ToLower(text))); len(hits) > 0 {
			return true, "non-news phrase"
		}
	}

	if f.Importance(text, entities) < f.importanceFloor && !hasPlaceOrOrg(entities) {
		return true, "below importance floor"
	}

	return false, ""
}

func hasPlaceOrOrg(entities []types.Entity) bool {
	for _, e := range entities {
		switch e.Type {
		case types.EntityGPE, types.EntityLocation, types.EntityOrg, types.EntityMilitaryOrg:
			return true
		}
	}
	return false
}

// cleanText drops URL tokens and collapses whitespace before length checks
// and formatting.
func cleanText(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if strings.HasPrefix(w, "http") {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
