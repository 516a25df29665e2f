package engine

import (
	"context"
	"fmt"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

// ExportSnapshot returns the full committed document for manual backup. The
// draft audit session is deliberately excluded: it is not part of the
// snapshot document.
func (s *Service) ExportSnapshot(ctx context.Context) (domain.Snapshot, error) {
	return s.store.Read(ctx)
}

// ImportSnapshot unconditionally replaces the whole store with the given
// document, rebased onto the next local version. Used for manual restore and
// for remote-sync pulls; the caller owns confirming destructive intent.
func (s *Service) ImportSnapshot(ctx context.Context, incoming domain.Snapshot) error {
	if len(incoming.Users) == 0 {
		return fmt.Errorf("%w: snapshot has no users; refusing to import a document that would lock everyone out", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Read(ctx)
	if err != nil {
		return err
	}
	incoming.Version = current.Version
	incoming.WriterID = ""
	return s.store.Write(ctx, incoming)
}
