package publishers

import (
	"time"

	"github.com/samvad-hq/collection-probe/internal/domain"
)

func sampleEvent() Event {
	return NewEvent("rijksmuseum", "Rijksmuseum", domain.Report{
		URL:        "https://www.rijksmuseum.nl/api/nl/collection?key=%3Credacted%3E&ps=100",
		StatusCode: 200,
		BodyBytes:  1024,
		Summary:    &domain.CollectionSummary{Title: "Rijksmuseum", TotalCount: 340, ItemCount: 100},
		CheckedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
}
