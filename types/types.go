package types

import "time"

// Status is the terminal classification assigned to a report. A report is
// classified exactly once.
type Status string

const (
	StatusOriginal Status = "ORIGINAL"
	StatusRepost   Status = "REPOST"
	StatusUpdate   Status = "UPDATE"
	StatusRelated  Status = "RELATED"
)

// Entity is a single extracted named entity.
type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Entity type labels. The NER capability and the pattern matchers both emit
// these; event hashing only considers the key subset (see KeyEntityTypes).
const (
	EntityGPE         = "GPE"
	EntityLocation    = "LOC"
	EntityOrg         = "ORG"
	EntityPerson      = "PERSON"
	EntityNORP        = "NORP"
	EntityFacility    = "FAC"
	EntityEvent       = "EVENT"
	EntityWeapon      = "WEAPON"
	EntityMilitaryOrg = "MILITARY_ORG"
)

// KeyEntityTypes are the entity types that participate in event hashing.
var KeyEntityTypes = map[string]bool{
	EntityGPE:         true,
	EntityLocation:    true,
	EntityOrg:         true,
	EntityWeapon:      true,
	EntityMilitaryOrg: true,
}

// ReportURL is a URL extracted from report text.
type ReportURL struct {
	Original  string `json:"original"`
	Canonical string `json:"canonical"`
	Domain    string `json:"domain"`
}

// Fingerprint holds the deterministic content fingerprint of a report.
type Fingerprint struct {
	TextNormalized string      `json:"text_normalized"`
	TextHash       string      `json:"text_hash"`
	EventHash      string      `json:"event_hash"`
	Entities       []Entity    `json:"entities"`
	URLs           []ReportURL `json:"urls"`
	CanonicalURLs  []string    `json:"urls_canonical"`
	Language       string      `json:"language"`
	Hashtags       []string    `json:"hashtags"`
	Mentions       []string    `json:"mentions"`
}

// Report is one ingested text item. Immutable once fingerprinted.
type Report struct {
	ID                string      `json:"id"`
	Source            string      `json:"source"`
	SourceTier        Tier        `json:"source_tier"`
	SourceReliability float64     `json:"source_reliability"`
	Text              string      `json:"text"`
	TextNormalized    string      `json:"text_normalized"`
	TextHash          string      `json:"text_hash"`
	EventHash         string      `json:"event_hash"`
	Entities          []Entity    `json:"entities"`
	URLs              []ReportURL `json:"urls"`
	CanonicalURLs     []string    `json:"urls_canonical"`
	MediaHashes       []string    `json:"media_hashes"`
	Timestamp         time.Time   `json:"timestamp"`
	DisplayTime       string      `json:"display_time"`
	Language          string      `json:"language"`
	Embedding         []float32   `json:"-"`

	// EventID is populated on candidates read back from storage when the
	// report anchors a canonical event.
	EventID int64 `json:"event_id,omitempty"`
}

// CanonicalEvent is the tracked representation of the first report of a
// distinct claim. Created exactly once per event hash; only the counters
// mutate, and they only ever increase.
type CanonicalEvent struct {
	ID                 int64     `json:"id"`
	EventHash          string    `json:"event_hash"`
	FirstReportID      string    `json:"first_report_id"`
	FirstSource        string    `json:"first_source"`
	FirstTimestamp     time.Time `json:"first_timestamp"`
	ClaimSummary       string    `json:"claim_summary"`
	VerificationStatus string    `json:"verification_status"`
	RepostCount        int       `json:"repost_count"`
	UpdateCount        int       `json:"update_count"`
}

// RepostLink ties a later report to a canonical event. Append-only.
type RepostLink struct {
	ID                string    `json:"id"`
	EventID           int64     `json:"event_id"`
	ReportID          string    `json:"report_id"`
	Source            string    `json:"source"`
	SourceTier        Tier      `json:"source_tier"`
	SourceReliability float64   `json:"source_reliability"`
	Classification    Status    `json:"classification"`
	Confidence        float64   `json:"confidence"`
	TimeDeltaSeconds  int64     `json:"time_delta_seconds"`
	AddedNewInfo      bool      `json:"added_new_info"`
	Timestamp         time.Time `json:"timestamp"`
}

// SourceMetrics holds the per-source historical counters the reliability
// score is derived from. The score is always recomputed from the counters.
type SourceMetrics struct {
	Source           string    `json:"source"`
	Tier             Tier      `json:"tier"`
	ReliabilityScore float64   `json:"reliability_score"`
	TotalTracked     int       `json:"total_tracked"`
	TotalOriginal    int       `json:"total_original"`
	TotalUpdates     int       `json:"total_updates"`
	TotalReposts     int       `json:"total_reposts"`
	FalseAlarmCount  int       `json:"false_alarm_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Classification is the outcome of running a report through the classifier.
type Classification struct {
	Status           Status  `json:"status"`
	Confidence       float64 `json:"confidence"`
	EventID          int64   `json:"event_id,omitempty"`
	OriginalReportID string  `json:"original_report_id,omitempty"`
	OriginalSource   string  `json:"original_source,omitempty"`
	TimeDeltaSeconds int64   `json:"time_delta_seconds"`
	AddedNewInfo     bool    `json:"added_new_info"`
	SimilarityScore  float64 `json:"similarity_score"`
}

// TrackedSource is a registry entry seeding tier and initial reliability for
// a known source.
type TrackedSource struct {
	Source             string  `json:"source"`
	Tier               Tier    `json:"tier"`
	InitialReliability float64 `json:"initial_reliability"`
	Notes              string  `json:"notes"`
}
