package engine

import (
	"context"
	"errors"
	"testing"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

func TestStartShift(t *testing.T) {
	svc := testService()
	ctx := WithActor(context.Background(), domain.Actor{UserID: "u-admin", Name: "Manager", Role: domain.RoleAdmin})

	shift, err := svc.StartShift(ctx, 100)
	if err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	if !shift.IsOpen || shift.OpeningBalance != 100 {
		t.Fatalf("shift = %+v, want open with balance 100", shift)
	}
	if shift.StartTime == nil {
		t.Fatal("start time not set")
	}
	if shift.OpenedBy != "Manager" {
		t.Fatalf("opened by = %q, want Manager", shift.OpenedBy)
	}
}

func TestStartShiftRejectsSecondOpen(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.StartShift(ctx, 50); err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	if _, err := svc.StartShift(ctx, 50); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestStartShiftRejectsNegativeBalance(t *testing.T) {
	svc := testService()
	if _, err := svc.StartShift(context.Background(), -1); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCloseShift(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.StartShift(ctx, 100); err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	shift, err := svc.CloseShift(ctx)
	if err != nil {
		t.Fatalf("CloseShift: %v", err)
	}
	if shift.IsOpen {
		t.Fatal("shift still open after close")
	}

	// The next shift needs its own declared balance; nothing carries over.
	reopened, err := svc.StartShift(ctx, 30)
	if err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	if reopened.OpeningBalance != 30 {
		t.Fatalf("opening balance = %v, want 30", reopened.OpeningBalance)
	}
}

func TestCloseShiftWithoutOpen(t *testing.T) {
	svc := testService()
	if _, err := svc.CloseShift(context.Background()); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}
