package publishers

import (
	"github.com/google/uuid"

	"github.com/samvad-hq/collection-probe/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	ID         string        `json:"event_id"`
	SourceID   string        `json:"source_id"`
	SourceName string        `json:"source_name"`
	Report     domain.Report `json:"report"`
}

// NewEvent constructs an Event for the given source + probe report.
func NewEvent(sourceID, sourceName string, report domain.Report) Event {
	return Event{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		SourceName: sourceName,
		Report:     report,
	}
}

const sourceIDAttribute = "source_id"
