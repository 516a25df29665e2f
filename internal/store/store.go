package store

import (
	"context"
	"errors"

	"superpos/backend/internal/domain"
)

var (
	// ErrValidation marks malformed or out-of-range operation input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to an entity id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation invoked in the wrong state, such as
	// opening a shift that is already open.
	ErrInvalidState = errors.New("invalid state")
	// ErrStaleSnapshot marks a write whose base version no longer matches the
	// persisted snapshot (another writer committed in between).
	ErrStaleSnapshot = errors.New("stale snapshot")
)

// Store owns the single mutable snapshot. Every mutation is expressed as
// "read snapshot, compute next snapshot, write it": Write persists the new
// document, stamps the next version, and only then notifies subscribers, so
// observers never see a partially applied state.
//
// The draft inventory audit is deliberately not part of the snapshot: it is
// persisted under a separate slot and excluded from export and sync.
type Store interface {
	Read(ctx context.Context) (domain.Snapshot, error)
	// Write replaces the snapshot. The incoming snapshot must carry the
	// version it was derived from; ErrStaleSnapshot is returned when that
	// version is no longer current.
	Write(ctx context.Context, snap domain.Snapshot) error
	// Subscribe registers a callback invoked synchronously after every
	// committed write with the full new snapshot. The returned function
	// removes the subscription.
	Subscribe(fn func(domain.Snapshot)) (unsubscribe func())

	// ReadAudit returns the draft audit session, or nil when none exists.
	ReadAudit(ctx context.Context) (*domain.InventoryAudit, error)
	// WriteAudit replaces the draft audit session; nil discards it.
	WriteAudit(ctx context.Context, audit *domain.InventoryAudit) error
}
