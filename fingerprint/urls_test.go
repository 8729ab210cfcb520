package fingerprint

import (
	"testing"

	"go.uber.org/zap"
)

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips_tracking_params",
			raw:  "https://news.example/article?utm_source=tw&id=42&fbclid=xyz",
			want: "https://news.example/article?id=42",
		},
		{
			name: "lowercases_host_strips_www",
			raw:  "https://WWW.News.Example/Article",
			want: "https://news.example/Article",
		},
		{
			name: "removes_trailing_slash_and_fragment",
			raw:  "https://news.example/article/#section",
			want: "https://news.example/article",
		},
		{
			name: "preserves_remaining_param_order",
			raw:  "https://news.example/a?z=1&utm_medium=email&a=2",
			want: "https://news.example/a?z=1&a=2",
		},
		{
			name: "defaults_scheme",
			raw:  "//news.example/a",
			want: "https://news.example/a",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalizeURL(tt.raw); got != tt.want {
				t.Errorf("CanonicalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeURLEquivalence(t *testing.T) {
	// The same shared article with different tracking decorations must
	// canonicalize identically.
	a := CanonicalizeURL("https://www.news.example/story?utm_source=app&utm_campaign=x")
	b := CanonicalizeURL("https://news.example/story/")
	if a != b {
		t.Errorf("expected equal canonical forms, got %q and %q", a, b)
	}
}

func TestDomain(t *testing.T) {
	if got := Domain("https://www.News.Example/path"); got != "news.example" {
		t.Errorf("Domain() = %q", got)
	}
}

func TestExtractURLs(t *testing.T) {
	f := New(nil, false, zap.NewNop())

	urls := f.ExtractURLs("Footage here: https://video.example/clip. More at http://news.example/a?ref=x, updates soon")
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0].Original != "https://video.example/clip" {
		t.Errorf("trailing punctuation not stripped: %q", urls[0].Original)
	}
	if urls[1].Canonical != "http://news.example/a" {
		t.Errorf("Canonical = %q", urls[1].Canonical)
	}
	if urls[0].Domain != "video.example" {
		t.Errorf("Domain = %q", urls[0].Domain)
	}
}
