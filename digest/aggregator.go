package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	oserrors "originstamp/errors"
	"originstamp/types"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// maxDigestLength bounds the formatted digest for short-form publication
// channels.
const maxDigestLength = 280

// Publisher is the outward publication sink. It returns the published item's
// id on success.
type Publisher interface {
	Publish(ctx context.Context, text string) (string, error)
}

// Aggregator owns the pending queue and the digest trigger logic.
type Aggregator struct {
	queue     *Queue
	filter    *Filter
	publisher Publisher
	logger    *zap.Logger

	interval       time.Duration
	highImportance int
	sizeFloor      int

	cron *cron.Cron
}

func NewAggregator(filter *Filter, publisher Publisher, queueCapacity int, interval time.Duration, highImportance, sizeFloor int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		queue:          NewQueue(queueCapacity),
		filter:         filter,
		publisher:      publisher,
		logger:         logger,
		interval:       interval,
		highImportance: highImportance,
		sizeFloor:      sizeFloor,
	}
}

// Offer runs a classified report's headline through the newsworthiness
// filter and, when it passes, enqueues it and flushes immediately if the
// trigger conditions hold. Returns true when the headline was queued.
func (a *Aggregator) Offer(ctx context.Context, report *types.Report, eventID int64, importanceEntities []types.Entity) bool {
	if rejected, reason := a.filter.Reject(report.Text, importanceEntities); rejected {
		a.logger.Debug("Headline rejected",
			zap.String("report_id", report.ID),
			zap.String("reason", reason))
		return false
	}

	h := Headline{
		EventID:     eventID,
		ReportID:    report.ID,
		Source:      report.Source,
		Text:        report.Text,
		DisplayTime: report.DisplayTime,
		ReportTime:  report.Timestamp,
		Importance:  a.filter.Importance(report.Text, importanceEntities),
		Entities:    importanceEntities,
	}

	if !a.queue.Add(h) {
		a.logger.Debug("Headline dropped, event already pending",
			zap.Int64("event_id", eventID),
			zap.String("report_id", report.ID))
		return false
	}

	a.logger.Info("Queued headline",
		zap.Int("importance", h.Importance),
		zap.Int64("event_id", eventID),
		zap.String("source", report.Source))

	if h.Importance > a.highImportance || a.queue.Len() >= a.sizeFloor {
		if _, err := a.Flush(ctx); err != nil {
			a.logger.Warn("Immediate digest flush failed, queue kept for next trigger", zap.Error(err))
		}
	}
	return true
}

// Flush publishes the single most important pending headline (ties broken by
// earliest report time) and clears the queue. On publish failure the queue
// is left intact for the next trigger.
func (a *Aggregator) Flush(ctx context.Context) (string, error) {
	pending := a.queue.Snapshot()
	if len(pending) == 0 {
		return "", nil
	}

	best := pending[0]
	for _, h := range pending[1:] {
		if h.Importance > best.Importance ||
			(h.Importance == best.Importance && h.ReportTime.Before(best.ReportTime)) {
			best = h
		}
	}

	text := formatDigest(best)
	publishedID, err := a.publisher.Publish(ctx, text)
	if err != nil {
		return "", oserrors.WrapError(oserrors.ErrPublishFailed, err.Error())
	}

	a.queue.Clear()
	a.logger.Info("Published digest",
		zap.String("published_id", publishedID),
		zap.Int64("event_id", best.EventID),
		zap.Int("pending_count", len(pending)))
	return publishedID, nil
}

// StartScheduler runs Flush on the configured interval until Stop is called.
func (a *Aggregator) StartScheduler(ctx context.Context) {
	a.cron = cron.New()
	if _, err := a.cron.AddFunc(fmt.Sprintf("@every %s", a.interval), func() {
		if _, err := a.Flush(ctx); err != nil {
			a.logger.Warn("Scheduled digest flush failed", zap.Error(err))
		}
	}); err != nil {
		a.logger.Error("Failed to schedule digest flush", zap.Error(err))
	}
	a.cron.Start()
}

// Stop halts the interval scheduler.
func (a *Aggregator) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
}

// QueueLen reports the number of pending headlines.
func (a *Aggregator) QueueLen() int {
	return a.queue.Len()
}

// formatDigest renders a single headline crediting its original reporter.
func formatDigest(h Headline) string {
	text := cleanText(h.Text)

	// First sentence, or hard truncation. Truncation counts runes so
	// multi-byte report text is never split mid-character.
	runes := []rune(text)
	if idx := indexRune(runes, '.'); idx >= 0 && idx < 120 {
		text = string(runes[:idx+1])
	} else if len(runes) > 100 {
		text = string(runes[:97]) + "..."
	}

	var b strings.Builder
	b.WriteString("MIDDLE EAST UPDATE\n\n")
	b.WriteString("• " + text + "\n")
	b.WriteString("  ↳ " + h.DisplayTime + " via @" + h.Source + "\n\n")
	b.WriteString("#MiddleEast #Iran #OSINT")

	out := b.String()
	if r := []rune(out); len(r) > maxDigestLength {
		out = string(r[:maxDigestLength-3]) + "..."
	}
	return out
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}
