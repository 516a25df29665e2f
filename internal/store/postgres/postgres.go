package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

// Store persists the snapshot as a single JSON document row, and the draft
// audit session as a second, independent row. The version column backs the
// optimistic check that turns concurrent writers from last-write-wins into an
// explicit ErrStaleSnapshot.
type Store struct {
	db *sql.DB

	subMu   sync.Mutex
	subs    map[int]func(domain.Snapshot)
	nextSub int
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, subs: make(map[int]func(domain.Snapshot))}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pos_snapshot (
			slot       smallint PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
			version    bigint NOT NULL,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS pos_audit_draft (
			slot       smallint PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Read(ctx context.Context) (domain.Snapshot, error) {
	var (
		version int64
		doc     []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT version, doc FROM pos_snapshot WHERE slot = 1`).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: an empty versioned snapshot that the first Write
		// will replace.
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot document: %w", err)
	}
	snap.Version = version
	return snap, nil
}

func (s *Store) Write(ctx context.Context, snap domain.Snapshot) error {
	base := snap.Version
	snap.Version = base + 1
	snap.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE pos_snapshot
		SET version = $1, doc = $2, updated_at = $3
		WHERE slot = 1 AND version = $4
	`, snap.Version, doc, snap.UpdatedAt, base)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if base != 0 {
			return s.staleWrite(ctx, base)
		}
		// First write against an empty table. Another fresh process may have
		// inserted in between; losing that race is a stale write too.
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO pos_snapshot (slot, version, doc, updated_at)
			VALUES (1, $1, $2, $3)
			ON CONFLICT (slot) DO NOTHING
		`, snap.Version, doc, snap.UpdatedAt)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return s.staleWrite(ctx, base)
		}
	}

	s.notify(snap)
	return nil
}

func (s *Store) staleWrite(ctx context.Context, base int64) error {
	var current int64
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM pos_snapshot WHERE slot = 1`).Scan(&current); err != nil {
		return err
	}
	return fmt.Errorf("%w: have v%d, write based on v%d", store.ErrStaleSnapshot, current, base)
}

func (s *Store) Subscribe(fn func(domain.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap domain.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) ReadAudit(ctx context.Context) (*domain.InventoryAudit, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM pos_audit_draft WHERE slot = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var audit domain.InventoryAudit
	if err := json.Unmarshal(doc, &audit); err != nil {
		return nil, fmt.Errorf("decode audit document: %w", err)
	}
	return &audit, nil
}

func (s *Store) WriteAudit(ctx context.Context, audit *domain.InventoryAudit) error {
	if audit == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM pos_audit_draft WHERE slot = 1`)
		return err
	}

	doc, err := json.Marshal(audit)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pos_audit_draft (slot, doc, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (slot) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, doc)
	return err
}
