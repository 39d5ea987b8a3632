package museums

import (
	"fmt"

	"github.com/samvad-hq/collection-probe/internal/domain"
	"github.com/samvad-hq/collection-probe/pkg/fetcher"
)

// genericJSONInspector counts the top-level entries of any JSON payload.
type genericJSONInspector struct{}

func NewGenericJSONInspector() Inspector { return genericJSONInspector{} }

func (genericJSONInspector) ID() string { return TypeGenericJSON }

func (genericJSONInspector) Inspect(src Source, out *fetcher.Outcome) (domain.CollectionSummary, error) {
	data := out.Data
	if data == nil {
		if err := out.Decode(&data); err != nil {
			return domain.CollectionSummary{}, err
		}
	}

	summary := domain.CollectionSummary{Title: src.Name}
	switch v := data.(type) {
	case []any:
		summary.ItemCount = len(v)
	case map[string]any:
		summary.ItemCount = len(v)
	default:
		return domain.CollectionSummary{}, fmt.Errorf("%s returned a %T, want an object or array", src.ID, data)
	}
	return summary, nil
}
