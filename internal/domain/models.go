package domain

import "time"

// Domain contains core models shared by the probe and its publishers.

// ArtObject is the slice of a collection record we keep as a sample.
type ArtObject struct {
	ID           string   `json:"id"`
	ObjectNumber string   `json:"object_number,omitempty"`
	Title        string   `json:"title"`
	Maker        string   `json:"maker,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Places       []string `json:"places,omitempty"`
}

// CollectionSummary is what an inspector extracts from one collection response.
type CollectionSummary struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	TotalCount  int        `json:"total_count,omitempty"`
	ItemCount   int        `json:"item_count"`
	Sample      *ArtObject `json:"sample,omitempty"`
}

// Failure kinds recorded on a Report.
const (
	FailureNone         = ""
	FailureTransport    = "transport"
	FailureBadStatus    = "bad_status"
	FailureParse        = "parse"
	FailureEmptyPayload = "empty_payload"
	FailureInspect      = "inspect"
)

// Report describes a single probe of a collection source.
type Report struct {
	URL         string             `json:"url"`
	StatusCode  int                `json:"status_code,omitempty"`
	BodyBytes   int                `json:"body_bytes"`
	ElapsedMs   int64              `json:"elapsed_ms"`
	Summary     *CollectionSummary `json:"summary,omitempty"`
	FailureKind string             `json:"failure_kind,omitempty"`
	Error       string             `json:"error,omitempty"`
	CheckedAt   time.Time          `json:"checked_at"`
}

// OK reports whether the probe produced a usable payload.
func (r Report) OK() bool {
	return r.FailureKind == FailureNone
}
