// Package pipeline runs ingested reports through fingerprinting, candidate
// retrieval, similarity scoring, classification, persistence and the digest
// filter. It defines the contracts the engine consumes; the concrete
// implementations are chosen once at startup.
package pipeline

import (
	"context"
	"sort"
	"time"

	"originstamp/classify"
	"originstamp/config"
	"originstamp/digest"
	oserrors "originstamp/errors"
	"originstamp/fingerprint"
	"originstamp/reliability"
	"originstamp/similarity"
	"originstamp/types"

	"go.uber.org/zap"
)

// Store is the storage collaborator contract. Implementations must provide
// idempotent create-if-absent semantics for canonical events.
type Store interface {
	SaveReport(ctx context.Context, report *types.Report) error
	FindCandidates(ctx context.Context, kind, value string, lookbackDays, limit int) ([]*types.Report, error)
	CreateEventIfAbsent(ctx context.Context, report *types.Report) (int64, error)
	AddRepostLink(ctx context.Context, link *types.RepostLink) error
	TrackReport(ctx context.Context, source string, tier types.Tier, status types.Status) error
	GetSourceMetrics(ctx context.Context, source string) (*types.SourceMetrics, error)
	SetReliabilityScore(ctx context.Context, source string, score float64) error
}

// Embedder is the optional semantic-embedding capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RawReport is an unprocessed report handed in by the transport.
type RawReport struct {
	ID          string
	Source      string
	Tier        string
	Text        string
	MediaHashes []string
	Timestamp   time.Time
}

// Result is what processing one report produces.
type Result struct {
	Report         *types.Report
	Classification types.Classification
}

// Candidate search kinds, matching the retriever contract.
const (
	searchTextHash  = "text_hash"
	searchEventHash = "event_hash"
	searchEntity    = "entity"
)

// entityFallbackTypes are the entity types used for the fallback candidate
// search when hash lookups return too little.
var entityFallbackTypes = map[string]bool{
	types.EntityGPE:      true,
	types.EntityLocation: true,
	types.EntityOrg:      true,
}

type Processor struct {
	cfg        *config.Config
	store      Store
	fp         *fingerprint.Fingerprinter
	embedder   Embedder
	aggregator *digest.Aggregator
	scorer     *reliability.Scorer
	thresholds classify.Thresholds
	eventLocks *keyedLocks
	logger     *zap.Logger
}

// NewProcessor wires the engine together. embedder and aggregator may be nil
// (capability absent / digests disabled).
func NewProcessor(cfg *config.Config, store Store, fp *fingerprint.Fingerprinter, embedder Embedder, aggregator *digest.Aggregator, scorer *reliability.Scorer, logger *zap.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		store:      store,
		fp:         fp,
		embedder:   embedder,
		aggregator: aggregator,
		scorer:     scorer,
		thresholds: classify.Thresholds{
			Repost:            cfg.RepostThreshold,
			Update:            cfg.UpdateThreshold,
			IndependentWindow: cfg.IndependentWindow,
		},
		eventLocks: newKeyedLocks(),
		logger:     logger,
	}
}

// Process runs one report through the full pipeline and returns its
// classification.
func (p *Processor) Process(ctx context.Context, raw RawReport) (*Result, error) {
	if raw.ID == "" || raw.Source == "" || raw.Text == "" {
		return nil, oserrors.WrapError(oserrors.ErrInvalidInput, "report requires id, source and text")
	}

	timestamp := raw.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	fp := p.fp.Fingerprint(raw.Text)
	report := &types.Report{
		ID:             raw.ID,
		Source:         raw.Source,
		SourceTier:     types.ParseTier(raw.Tier),
		Text:           raw.Text,
		TextNormalized: fp.TextNormalized,
		TextHash:       fp.TextHash,
		EventHash:      fp.EventHash,
		Entities:       fp.Entities,
		URLs:           fp.URLs,
		CanonicalURLs:  fp.CanonicalURLs,
		MediaHashes:    raw.MediaHashes,
		Timestamp:      timestamp,
		DisplayTime:    timestamp.UTC().Format("Jan 2, 2006 at 3:04 PM MST"),
		Language:       fp.Language,
	}

	if p.embedder != nil {
		vector, err := p.embedder.Embed(ctx, report.TextNormalized)
		if err != nil {
			// Non-fatal: the scorer redistributes weights when the
			// semantic signal is missing.
			p.logger.Warn("Embedding failed, scoring without semantic signal",
				zap.String("report_id", report.ID), zap.Error(err))
		} else {
			report.Embedding = vector
		}
	}

	candidates, err := p.retrieveCandidates(ctx, report)
	if err != nil {
		return nil, oserrors.WrapError(err, "candidate retrieval failed")
	}

	best, bestScore := similarity.BestCandidate(report, candidates)
	cls := classify.Classify(report, best, bestScore, p.thresholds)

	if err := p.persist(ctx, report, &cls); err != nil {
		return nil, err
	}

	if err := p.store.TrackReport(ctx, report.Source, report.SourceTier, cls.Status); err != nil {
		p.logger.Error("Failed to update source metrics",
			zap.String("source", report.Source), zap.Error(err))
	} else if p.scorer != nil {
		if _, err := p.scorer.Recompute(ctx, report.Source); err != nil {
			p.logger.Warn("Reliability recompute failed",
				zap.String("source", report.Source), zap.Error(err))
		}
	}

	p.logClassification(report, &cls)

	if p.aggregator != nil && (cls.Status == types.StatusOriginal || cls.Status == types.StatusUpdate) {
		p.aggregator.Offer(ctx, report, cls.EventID, report.Entities)
	}

	return &Result{Report: report, Classification: cls}, nil
}

// retrieveCandidates merges hash-based lookups with an entity fallback when
// the hashes return too little, deduplicated by report id and ordered oldest
// first.
func (p *Processor) retrieveCandidates(ctx context.Context, report *types.Report) ([]*types.Report, error) {
	queries := []struct{ kind, value string }{
		{searchTextHash, report.TextHash},
		{searchEventHash, report.EventHash},
	}

	seen := make(map[string]bool)
	var merged []*types.Report

	runQuery := func(kind, value string) error {
		found, err := p.store.FindCandidates(ctx, kind, value, p.cfg.LookbackDays, p.cfg.CandidateLimit)
		if err != nil {
			return err
		}
		for _, cand := range found {
			if cand.ID == report.ID || seen[cand.ID] {
				continue
			}
			seen[cand.ID] = true
			merged = append(merged, cand)
		}
		return nil
	}

	for _, q := range queries {
		if err := runQuery(q.kind, q.value); err != nil {
			return nil, err
		}
	}

	if len(merged) < p.cfg.EntityFallbackMin {
		for _, value := range p.keyEntityValues(report) {
			if err := runQuery(searchEntity, value); err != nil {
				return nil, err
			}
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged, nil
}

func (p *Processor) keyEntityValues(report *types.Report) []string {
	var values []string
	for _, e := range report.Entities {
		if !entityFallbackTypes[e.Type] {
			continue
		}
		values = append(values, e.Value)
		if len(values) >= p.cfg.MaxKeyEntities {
			break
		}
	}
	return values
}

// persist stores the report and either creates the canonical event or links
// the report to an existing one. Canonical event creation runs under a
// per-event-hash lock so two concurrent first reports of the same claim
// converge on one event.
func (p *Processor) persist(ctx context.Context, report *types.Report, cls *types.Classification) error {
	release := p.eventLocks.Acquire(report.EventHash)
	defer release()

	if err := p.store.SaveReport(ctx, report); err != nil {
		return oserrors.WrapError(err, "failed to save report")
	}

	switch cls.Status {
	case types.StatusOriginal:
		eventID, err := p.store.CreateEventIfAbsent(ctx, report)
		if err != nil {
			return oserrors.WrapError(err, "failed to create canonical event")
		}
		cls.EventID = eventID

	case types.StatusRepost, types.StatusUpdate:
		if cls.EventID == 0 {
			// The best candidate is itself a repost without an anchoring
			// event; nothing to link against.
			p.logger.Debug("No canonical event to link",
				zap.String("report_id", report.ID),
				zap.String("original_report_id", cls.OriginalReportID))
			return nil
		}
		link := &types.RepostLink{
			EventID:          cls.EventID,
			ReportID:         report.ID,
			Source:           report.Source,
			SourceTier:       report.SourceTier,
			Classification:   cls.Status,
			Confidence:       cls.Confidence,
			TimeDeltaSeconds: cls.TimeDeltaSeconds,
			AddedNewInfo:     cls.AddedNewInfo,
			Timestamp:        report.Timestamp,
		}
		if err := p.store.AddRepostLink(ctx, link); err != nil {
			return oserrors.WrapError(err, "failed to add repost link")
		}
	}
	return nil
}

func (p *Processor) logClassification(report *types.Report, cls *types.Classification) {
	switch cls.Status {
	case types.StatusOriginal:
		p.logger.Info("New original report",
			zap.String("report_id", report.ID),
			zap.String("source", report.Source),
			zap.Int64("event_id", cls.EventID))
	default:
		p.logger.Info("Classified report",
			zap.String("report_id", report.ID),
			zap.String("source", report.Source),
			zap.String("status", string(cls.Status)),
			zap.Float64("confidence", cls.Confidence),
			zap.String("original_source", cls.OriginalSource),
			zap.Int64("time_delta_seconds", cls.TimeDeltaSeconds))
	}
}
