package contract

import (
	"context"
)

// PropertyEvent is one change notification: a named property moved from
// OldValue to NewValue. OldValue is nil when the publisher has no
// meaningful previous state for the property.
type PropertyEvent struct {
	Property string `json:"property"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// PropertyListener is the capability a subscriber hands to a publisher.
// The publisher only ever invokes OnPropertyChanged; it knows nothing
// about the transport behind the listener. The context carries the
// per-delivery deadline: a listener that can't accept the event in time
// must return the context error instead of blocking the publisher.
type PropertyListener interface {
	OnPropertyChanged(ctx context.Context, evt PropertyEvent) error
}

// FileStorage is the narrow surface of the external file service.
type FileStorage interface {
	// GetFile returns the stored bytes for filename, or ErrFileNotFound.
	GetFile(ctx context.Context, filename string) ([]byte, error)
	// StoreData persists data under filename, overwriting any previous
	// content.
	StoreData(ctx context.Context, filename string, data []byte) error
}
