package fingerprint

import (
	"testing"

	"originstamp/types"

	"go.uber.org/zap"
)

func newTestFingerprinter() *Fingerprinter {
	return New(nil, false, zap.NewNop())
}

func TestNormalize(t *testing.T) {
	f := newTestFingerprinter()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "lowercases_and_collapses_whitespace",
			text: "BREAKING:   Explosion  Reported",
			want: "breaking explosion reported",
		},
		{
			name: "strips_urls",
			text: "Strike confirmed https://example.com/article and www.other.com/x",
			want: "strike confirmed and",
		},
		{
			name: "strips_mentions_unwraps_hashtags",
			text: "@reporter says #Breaking news from #Tehran",
			want: "says breaking news from tehran",
		},
		{
			name: "removes_punctuation_keeps_unicode_letters",
			text: "Missiles fired -- 12 casualties, per sources!",
			want: "missiles fired 12 casualties per sources",
		},
		{
			name: "empty",
			text: "",
			want: "",
		},
		{
			name: "uppercase_scheme_url",
			text: "See HTTP://Example.COM/a for details",
			want: "see for details",
		},
		{
			// Punctuation removal fuses "ht.tp" into a new url-shaped token;
			// it must not survive into the output.
			name: "punctuation_fuses_url_prefix",
			text: "ht.tpfoo attack reported",
			want: "attack reported",
		},
		{
			name: "punctuation_fuses_www_prefix",
			text: "w.ww.site strike confirmed",
			want: "strike confirmed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Normalize(tt.text)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.text, got, tt.want)
			}
			// Normalizing already-normalized text must change nothing.
			if again := f.Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestHashTextStable(t *testing.T) {
	f := newTestFingerprinter()

	// Surface variations that normalize identically must hash identically.
	h1 := f.HashText("BREAKING: Explosion in Tehran! https://t.co/abc")
	h2 := f.HashText("breaking   explosion in tehran")
	if h1 != h2 {
		t.Errorf("equivalent texts hashed differently: %s vs %s", h1, h2)
	}

	h3 := f.HashText("breaking explosion in isfahan")
	if h1 == h3 {
		t.Error("different texts produced the same hash")
	}

	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestGenerateEventHashOrderInvariant(t *testing.T) {
	f := newTestFingerprinter()

	text := "explosion reported near the airbase"
	entities := []types.Entity{
		{Type: types.EntityGPE, Value: "Tehran"},
		{Type: types.EntityMilitaryOrg, Value: "IRGC"},
		{Type: types.EntityLocation, Value: "airbase"},
	}
	reversed := []types.Entity{entities[2], entities[1], entities[0]}

	urls := []string{"https://a.example/1", "https://b.example/2"}
	urlsReversed := []string{urls[1], urls[0]}

	h1 := f.GenerateEventHash(text, entities, urls)
	h2 := f.GenerateEventHash(text, reversed, urlsReversed)
	if h1 != h2 {
		t.Error("event hash depends on entity/url discovery order")
	}
}

func TestGenerateEventHashIgnoresNonKeyEntities(t *testing.T) {
	f := newTestFingerprinter()

	text := "strike on the facility"
	key := []types.Entity{{Type: types.EntityGPE, Value: "Damascus"}}
	withPerson := append([]types.Entity{{Type: types.EntityPerson, Value: "Somebody"}}, key...)

	if f.GenerateEventHash(text, key, nil) != f.GenerateEventHash(text, withPerson, nil) {
		t.Error("non-key entity types must not affect the event hash")
	}

	differentKey := []types.Entity{{Type: types.EntityGPE, Value: "Beirut"}}
	if f.GenerateEventHash(text, key, nil) == f.GenerateEventHash(text, differentKey, nil) {
		t.Error("different key entities must change the event hash")
	}
}

func TestExtractHashtagsAndMentions(t *testing.T) {
	f := newTestFingerprinter()

	text := "RT @osint_watch: #Breaking strike near #Tehran per @reuters"
	tags := f.ExtractHashtags(text)
	if len(tags) != 2 || tags[0] != "Breaking" || tags[1] != "Tehran" {
		t.Errorf("ExtractHashtags() = %v", tags)
	}

	mentions := f.ExtractMentions(text)
	if len(mentions) != 2 || mentions[0] != "osint_watch" || mentions[1] != "reuters" {
		t.Errorf("ExtractMentions() = %v", mentions)
	}
}

func TestFingerprintWithoutCapabilities(t *testing.T) {
	f := newTestFingerprinter()

	fp := f.Fingerprint("Explosion reported in Tehran https://news.example/a?utm_source=x")
	if fp.TextNormalized == "" || fp.TextHash == "" || fp.EventHash == "" {
		t.Fatal("fingerprint fields missing")
	}
	if fp.Language != LanguageUnknown {
		t.Errorf("expected unknown language without detector, got %q", fp.Language)
	}
	if len(fp.CanonicalURLs) != 1 || fp.CanonicalURLs[0] != "https://news.example/a" {
		t.Errorf("CanonicalURLs = %v", fp.CanonicalURLs)
	}
}
