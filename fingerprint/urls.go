package fingerprint

import (
	"net/url"
	"strings"

	"originstamp/types"
)

// trackingParams are query parameters stripped during canonicalization.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"source":       true,
	"mc_cid":       true,
	"mc_eid":       true,
	"_ga":          true,
	"s":            true,
	"share":        true,
}

// CanonicalizeURL normalizes a URL: tracking parameters dropped, scheme and
// domain lowercased, leading "www." stripped, fragment removed, trailing
// path slash removed. Remaining query parameters keep their original order.
func CanonicalizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		scheme = "https"
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	path := strings.TrimRight(parsed.EscapedPath(), "/")
	query := filterQuery(parsed.RawQuery)

	canonical := scheme + "://" + host + path
	if query != "" {
		canonical += "?" + query
	}
	return canonical
}

// filterQuery removes tracking parameters while preserving the order of the
// remaining ones. url.Values cannot be used here: it is a map and loses the
// original parameter order.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if idx := strings.Index(pair, "="); idx >= 0 {
			key = pair[:idx]
		}
		if trackingParams[strings.ToLower(key)] {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// Domain extracts the lowercased host without a leading "www.".
func Domain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}

// ExtractURLs finds URL-like tokens in the text, strips trailing punctuation
// and canonicalizes each.
func (f *Fingerprinter) ExtractURLs(text string) []types.ReportURL {
	if text == "" {
		return nil
	}

	found := f.urlFindRe.FindAllString(text, -1)
	urls := make([]types.ReportURL, 0, len(found))
	for _, raw := range found {
		raw = strings.TrimRight(raw, ".,;:!?)")
		urls = append(urls, types.ReportURL{
			Original:  raw,
			Canonical: CanonicalizeURL(raw),
			Domain:    Domain(raw),
		})
	}
	return urls
}
