package fingerprint

import (
	"regexp"
	"strings"

	"originstamp/types"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

// nerLabels are the model labels we keep. Anything else (dates, quantities)
// is noise for event matching.
var nerLabels = map[string]bool{
	types.EntityGPE:      true,
	types.EntityLocation: true,
	types.EntityOrg:      true,
	types.EntityPerson:   true,
	types.EntityNORP:     true,
	types.EntityFacility: true,
	types.EntityEvent:    true,
}

var weaponPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b([A-Z]-\d+[A-Z]?)\b`), // F-16, S-300
	regexp.MustCompile(`(?i)\b([A-Z]{2,}-\d+)\b`),
	regexp.MustCompile(`(?i)\b(Iron Dome|Arrow|Patriot|THAAD)\b`),
	regexp.MustCompile(`(?i)\b(Merkava|Abrams|Leopard)\b`),
	regexp.MustCompile(`(?i)\b(Sejjil|Shahab|Fateh|Emad)\b`),
	regexp.MustCompile(`(?i)\b(Kornet|Javelin|TOW|Milan)\b`),
}

var militaryOrgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(IDF|IRGC|Hezbollah|Hamas|PIJ|Houthis?)\b`),
	regexp.MustCompile(`(?i)\b(Quds Force|Revolutionary Guard)\b`),
	regexp.MustCompile(`(?i)\b(Mossad|Shin Bet|AMAN)\b`),
}

const (
	nerConfidence         = 0.90
	weaponConfidence      = 0.85
	militaryOrgConfidence = 0.95
)

// ExtractEntities runs the NER capability (if present) and the weapon /
// military-organization pattern matchers over the raw text. Values are
// deduplicated case-insensitively within a type, and a pattern hit for an
// organization the model already found is not added twice.
func (f *Fingerprinter) ExtractEntities(text string) []types.Entity {
	if text == "" {
		return nil
	}

	var entities []types.Entity
	seenByType := make(map[string]map[string]bool)
	seenAny := make(map[string]bool)

	add := func(e types.Entity) {
		key := strings.ToLower(e.Value)
		if seenByType[e.Type] == nil {
			seenByType[e.Type] = make(map[string]bool)
		}
		if seenByType[e.Type][key] {
			return
		}
		seenByType[e.Type][key] = true
		seenAny[key] = true
		entities = append(entities, e)
	}

	if f.extractor != nil {
		modelEntities, err := f.extractor.Extract(text)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("Entity extraction failed, continuing with pattern matchers only", zap.Error(err))
			}
		} else {
			for _, e := range modelEntities {
				add(e)
			}
		}
	}

	for _, re := range weaponPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			add(types.Entity{Type: types.EntityWeapon, Value: m[1], Confidence: weaponConfidence})
		}
	}

	for _, re := range militaryOrgPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if seenAny[strings.ToLower(m[1])] {
				continue
			}
			add(types.Entity{Type: types.EntityMilitaryOrg, Value: m[1], Confidence: militaryOrgConfidence})
		}
	}

	return entities
}

// ProseExtractor is the default NER capability backed by the prose model.
type ProseExtractor struct {
	logger *zap.Logger
}

func NewProseExtractor(logger *zap.Logger) *ProseExtractor {
	return &ProseExtractor{logger: logger}
}

// Extract returns the model's named entities, filtered to the labels that
// matter for event matching.
func (p *ProseExtractor) Extract(text string) ([]types.Entity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	var entities []types.Entity
	for _, ent := range doc.Entities() {
		if !nerLabels[ent.Label] {
			continue
		}
		entities = append(entities, types.Entity{
			Type:       ent.Label,
			Value:      ent.Text,
			Confidence: nerConfidence,
		})
	}
	return entities, nil
}
