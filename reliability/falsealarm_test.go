package reliability

import (
	"context"
	"testing"

	"originstamp/types"
)

type fakeFalseAlarmStore struct {
	*fakeMetricsStore
	disputedEvents []int64
	firstSource    string
}

func (f *fakeFalseAlarmStore) MarkEventDisputed(_ context.Context, eventID int64) (string, error) {
	f.disputedEvents = append(f.disputedEvents, eventID)
	return f.firstSource, nil
}

func (f *fakeFalseAlarmStore) IncrementFalseAlarm(_ context.Context, source string) error {
	if m := f.metrics[source]; m != nil {
		m.FalseAlarmCount++
	}
	return nil
}

func TestMarkFalseAlarm(t *testing.T) {
	store := &fakeFalseAlarmStore{
		fakeMetricsStore: newFakeMetricsStore(),
		firstSource:      "rumor_mill",
	}
	store.metrics["rumor_mill"] = &types.SourceMetrics{
		Source:       "rumor_mill",
		Tier:         types.TierSecondary,
		TotalTracked: 10,
	}

	before := Score(store.metrics["rumor_mill"])

	score, err := MarkFalseAlarm(context.Background(), store, 42, nil)
	if err != nil {
		t.Fatalf("MarkFalseAlarm() error = %v", err)
	}

	if len(store.disputedEvents) != 1 || store.disputedEvents[0] != 42 {
		t.Errorf("disputed events = %v", store.disputedEvents)
	}
	if store.metrics["rumor_mill"].FalseAlarmCount != 1 {
		t.Errorf("FalseAlarmCount = %d, want 1", store.metrics["rumor_mill"].FalseAlarmCount)
	}
	if score >= before {
		t.Errorf("score should drop after a false alarm: %f -> %f", before, score)
	}
	if stored := store.scores["rumor_mill"]; stored != score {
		t.Errorf("stored score = %f, returned %f", stored, score)
	}
}
