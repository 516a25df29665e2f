package engine

import (
	"context"
	"fmt"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

// StartShift opens the cash-drawer session with a manually declared opening
// balance. At most one shift may be open.
func (s *Service) StartShift(ctx context.Context, openingBalance float64) (domain.Shift, error) {
	actor, _ := ActorFromContext(ctx)

	var shift domain.Shift
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if openingBalance < 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: opening balance must not be negative", store.ErrValidation)
		}
		if snap.CurrentShift.IsOpen {
			return domain.Snapshot{}, fmt.Errorf("%w: a shift is already open", store.ErrInvalidState)
		}

		next := snap.Clone()
		start := s.now()
		next.CurrentShift = domain.Shift{
			IsOpen:         true,
			OpeningBalance: openingBalance,
			StartTime:      &start,
			OpenedBy:       actor.Name,
		}
		shift = next.CurrentShift
		return next, nil
	})
	return shift, err
}

// CloseShift ends the open session. The opening balance is not carried over:
// the next StartShift requires a fresh declared amount.
func (s *Service) CloseShift(ctx context.Context) (domain.Shift, error) {
	var shift domain.Shift
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if !snap.CurrentShift.IsOpen {
			return domain.Snapshot{}, fmt.Errorf("%w: no shift is open", store.ErrInvalidState)
		}
		next := snap.Clone()
		next.CurrentShift.IsOpen = false
		shift = next.CurrentShift
		return next, nil
	})
	return shift, err
}

// CurrentShift returns the shift singleton as stored.
func (s *Service) CurrentShift(ctx context.Context) (domain.Shift, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return domain.Shift{}, err
	}
	return snap.CurrentShift, nil
}
