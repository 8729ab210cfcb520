package digest

import (
	"testing"

	"originstamp/types"

	"github.com/stretchr/testify/assert"
)

var testKeywords = []string{"strike", "missile", "explosion", "breaking", "confirmed"}
var testPhrases = []string{"good morning", "link in bio", "subscribe"}

func newTestFilter() *Filter {
	return NewFilter(testKeywords, testPhrases, 20, 10)
}

func TestImportance(t *testing.T) {
	f := newTestFilter()

	tests := []struct {
		name     string
		text     string
		entities []types.Entity
		want     int
	}{
		{
			name: "keywords_only",
			text: "BREAKING: missile strike confirmed",
			want: 4 * 10,
		},
		{
			name: "entities_add_points",
			text: "quiet day in the region",
			entities: []types.Entity{
				{Type: types.EntityPerson, Value: "Somebody"},
			},
			want: 5,
		},
		{
			name: "locations_weigh_more",
			text: "movement observed",
			entities: []types.Entity{
				{Type: types.EntityGPE, Value: "Tehran"},
			},
			want: 5 + 8,
		},
		{
			name: "military_orgs_weigh_most",
			text: "units mobilizing",
			entities: []types.Entity{
				{Type: types.EntityMilitaryOrg, Value: "IRGC"},
			},
			want: 5 + 15,
		},
		{
			name: "nothing",
			text: "an uneventful afternoon",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Importance(tt.text, tt.entities))
		})
	}
}

func TestReject(t *testing.T) {
	f := newTestFilter()

	place := []types.Entity{{Type: types.EntityGPE, Value: "Tehran"}}

	tests := []struct {
		name       string
		text       string
		entities   []types.Entity
		wantReject bool
		wantReason string
	}{
		{
			name:       "reshare",
			text:       "RT @other: missile strike confirmed in the region",
			entities:   place,
			wantReject: true,
			wantReason: "reshare",
		},
		{
			name:       "reply",
			text:       "@someone missile strike confirmed in the region",
			entities:   place,
			wantReject: true,
			wantReason: "reply",
		},
		{
			name:       "too_short_after_url_strip",
			text:       "look https://example.com/a https://example.com/b",
			entities:   place,
			wantReject: true,
			wantReason: "too short",
		},
		{
			name:       "non_news_phrase",
			text:       "good morning everyone, hope you all slept well tonight",
			entities:   place,
			wantReject: true,
			wantReason: "non-news phrase",
		},
		{
			name:       "low_importance_no_place",
			text:       "an interesting development may happen at some point",
			wantReject: true,
			wantReason: "below importance floor",
		},
		{
			name:       "low_importance_with_place_kept",
			text:       "unusual aircraft activity observed over the city tonight",
			entities:   place,
			wantReject: false,
		},
		{
			name:       "newsworthy_kept",
			text:       "BREAKING: explosion reported, missile strike suspected near the base",
			entities:   place,
			wantReject: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejected, reason := f.Reject(tt.text, tt.entities)
			assert.Equal(t, tt.wantReject, rejected)
			if tt.wantReject {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}
