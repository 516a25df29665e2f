// Package backup mirrors committed snapshots to a remote slot. The mirror is
// fire-and-forget: it rides the store's change notifications and is never
// coordinated with local mutations beyond that.
package backup

import (
	"context"
	"log"
	"time"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

type Mirror interface {
	// Push uploads the full snapshot document (no diffs).
	Push(ctx context.Context, snap domain.Snapshot) error
	// Pull fetches the last mirrored document, or store.ErrNotFound when the
	// slot is empty.
	Pull(ctx context.Context) (domain.Snapshot, error)
}

type NoopMirror struct{}

func (NoopMirror) Push(_ context.Context, _ domain.Snapshot) error { return nil }

func (NoopMirror) Pull(_ context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{}, store.ErrNotFound
}

const pushTimeout = 10 * time.Second

// Attach subscribes the mirror to the store. Each committed snapshot is
// pushed from its own goroutine so a slow remote never blocks the
// persist-then-notify sequence; failures are logged and the next write tries
// again with the newer document.
func Attach(st store.Store, mirror Mirror) (detach func()) {
	return st.Subscribe(func(snap domain.Snapshot) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
			defer cancel()
			if err := mirror.Push(ctx, snap); err != nil {
				log.Printf("[backup] WARN: mirror push failed for v%d: %v", snap.Version, err)
			}
		}()
	})
}
