package probe

import (
	"context"

	"github.com/samvad-hq/collection-probe/pkg/publishers"
)

// EventPublisher delivers probe reports downstream. It returns the number of
// sinks that accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// SecretLookup resolves a named secret to its value ("" when unset).
type SecretLookup func(name string) string
