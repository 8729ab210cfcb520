package fingerprint

import (
	"errors"
	"testing"

	"originstamp/types"

	"go.uber.org/zap"
)

type stubExtractor struct {
	entities []types.Entity
	err      error
}

func (s *stubExtractor) Extract(string) ([]types.Entity, error) {
	return s.entities, s.err
}

func TestExtractEntitiesPatternMatchers(t *testing.T) {
	f := New(nil, false, zap.NewNop())

	entities := f.ExtractEntities("IRGC fires Shahab missiles, F-16 jets scrambled, Iron Dome active")

	byType := make(map[string][]string)
	for _, e := range entities {
		byType[e.Type] = append(byType[e.Type], e.Value)
	}

	if len(byType[types.EntityMilitaryOrg]) != 1 || byType[types.EntityMilitaryOrg][0] != "IRGC" {
		t.Errorf("military orgs = %v", byType[types.EntityMilitaryOrg])
	}
	wantWeapons := map[string]bool{"Shahab": true, "F-16": true, "Iron Dome": true}
	for _, w := range byType[types.EntityWeapon] {
		if !wantWeapons[w] {
			t.Errorf("unexpected weapon %q", w)
		}
		delete(wantWeapons, w)
	}
	if len(wantWeapons) > 0 {
		t.Errorf("weapons not matched: %v", wantWeapons)
	}
}

func TestExtractEntitiesDedup(t *testing.T) {
	f := New(nil, false, zap.NewNop())

	entities := f.ExtractEntities("Hezbollah and HEZBOLLAH and hezbollah")
	if len(entities) != 1 {
		t.Errorf("expected case-insensitive dedup to one entity, got %v", entities)
	}
}

func TestExtractEntitiesModelTakesPrecedence(t *testing.T) {
	// When the model already found the organization, the pattern matcher must
	// not add a MILITARY_ORG duplicate.
	f := New(&stubExtractor{entities: []types.Entity{
		{Type: types.EntityOrg, Value: "Hezbollah", Confidence: 0.90},
	}}, false, zap.NewNop())

	entities := f.ExtractEntities("Hezbollah claims responsibility")
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %v", entities)
	}
	if entities[0].Type != types.EntityOrg {
		t.Errorf("expected model ORG label kept, got %s", entities[0].Type)
	}
}

func TestExtractEntitiesModelFailureNonFatal(t *testing.T) {
	f := New(&stubExtractor{err: errors.New("model unavailable")}, false, zap.NewNop())

	entities := f.ExtractEntities("IDF confirms the strike")
	if len(entities) != 1 || entities[0].Value != "IDF" {
		t.Errorf("pattern matchers should still run on model failure, got %v", entities)
	}
}
