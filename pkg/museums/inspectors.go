package museums

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/collection-probe/internal/domain"
	"github.com/samvad-hq/collection-probe/pkg/fetcher"
)

// Inspector summarises a fetched collection response for a source.
type Inspector interface {
	ID() string
	Inspect(src Source, out *fetcher.Outcome) (domain.CollectionSummary, error)
}

// InspectorRegistry resolves the inspector for a given source.
type InspectorRegistry interface {
	InspectorFor(src Source) (Inspector, error)
}

// inspectorRegistry implements InspectorRegistry.
type inspectorRegistry struct {
	byID   map[string]Inspector
	byType map[string]Inspector
	mu     sync.RWMutex
}

// NewInspectorRegistry builds a registry with type-based inspectors and
// source-specific inspectors keyed by their ID.
func NewInspectorRegistry(typeInspectors map[string]Inspector, inspectors ...Inspector) InspectorRegistry {
	reg := &inspectorRegistry{
		byID:   make(map[string]Inspector),
		byType: make(map[string]Inspector),
	}
	for _, in := range inspectors {
		if in == nil {
			continue
		}
		reg.register(reg.byID, in.ID(), in)
	}
	for typ, in := range typeInspectors {
		reg.register(reg.byType, typ, in)
	}
	return reg
}

func (r *inspectorRegistry) register(into map[string]Inspector, key string, in Inspector) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || in == nil {
		return
	}
	r.mu.Lock()
	into[key] = in
	r.mu.Unlock()
}

// InspectorFor selects the inspector for the given source based on its id or type.
func (r *inspectorRegistry) InspectorFor(src Source) (Inspector, error) {
	if r == nil {
		return nil, fmt.Errorf("inspector registry is nil")
	}
	if strings.TrimSpace(src.ID) == "" {
		return nil, fmt.Errorf("source id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if in, ok := r.byID[strings.ToLower(strings.TrimSpace(src.ID))]; ok {
		return in, nil
	}
	if typ := strings.ToLower(strings.TrimSpace(src.Type)); typ != "" {
		if in, ok := r.byType[typ]; ok {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no inspector registered for source %q (type %q)", src.ID, src.Type)
}

const (
	TypeRijksmuseum   = "rijksmuseum"
	TypeBritishMuseum = "british_museum"
	TypeGenericJSON   = "generic_json"
)

// DefaultInspectorRegistry wires up the known inspectors.
func DefaultInspectorRegistry() InspectorRegistry {
	return NewInspectorRegistry(map[string]Inspector{
		TypeRijksmuseum:   NewRijksmuseumInspector(),
		TypeBritishMuseum: NewBritishMuseumInspector(),
		TypeGenericJSON:   NewGenericJSONInspector(),
	})
}
