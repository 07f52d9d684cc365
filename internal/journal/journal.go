package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/five82/crown/internal/crown"
	"github.com/five82/crown/internal/journal/migrations"
	"github.com/five82/crown/internal/journal/sqlitemigrate"
)

// Kind distinguishes journal entries.
type Kind string

const (
	KindReign Kind = "reign"
	KindClaim Kind = "claim"
)

// Event is one journal entry, newest first when listed.
type Event struct {
	ID      string
	Kind    Kind
	At      time.Time
	Holder  string // reign: the new holder; claim: the payer
	Price   uint64
	Message string

	// Claims only.
	Status crown.ClaimStatus
	TxID   string
	Error  string
}

// DefaultLimit is how many events the events panel lists.
const DefaultLimit = 50

// Store is a SQLite-backed record of observed reigns and claim attempts.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and its directory if needed and applies
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := clean + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, db, migrations.FS, ""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordReign stores st unless it is identical to the most recent reign,
// so restarts do not duplicate the standing holder.
func (s *Store) RecordReign(ctx context.Context, st crown.State, observedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	price, err := toInt64(st.Price)
	if err != nil {
		return err
	}
	if observedAt.IsZero() {
		observedAt = s.now()
	}

	var holder, message string
	var lastPrice int64
	err = s.db.QueryRowContext(ctx,
		`SELECT holder, price, message FROM reigns ORDER BY observed_at DESC, rowid DESC LIMIT 1`,
	).Scan(&holder, &lastPrice, &message)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("load last reign: %w", err)
	case holder == st.Holder && lastPrice == price && message == st.Message:
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reigns (id, holder, price, message, observed_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), st.Holder, price, st.Message, toMillis(observedAt),
	); err != nil {
		return fmt.Errorf("record reign: %w", err)
	}
	return nil
}

// RecordClaim stores one claim attempt.
func (s *Store) RecordClaim(ctx context.Context, attempt crown.ClaimAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch attempt.Status {
	case crown.ClaimAccepted, crown.ClaimRejected, crown.ClaimCancelled:
	default:
		return fmt.Errorf("claim status %q is not recordable", attempt.Status)
	}
	price, err := toInt64(attempt.Price)
	if err != nil {
		return err
	}
	at := attempt.At
	if at.IsZero() {
		at = s.now()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (id, message, payer, price, txid, status, error, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), attempt.Message, attempt.Payer, price, attempt.TxID,
		string(attempt.Status), attempt.Error, toMillis(at),
	); err != nil {
		return fmt.Errorf("record claim: %w", err)
	}
	return nil
}

// Recent returns up to limit events across both tables, newest first. A
// non-positive limit means DefaultLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT 'reign', id, holder, price, message, '', '', '', observed_at FROM reigns
UNION ALL
SELECT 'claim', id, payer, price, message, status, txid, error, attempted_at FROM claims
ORDER BY 9 DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			evt    Event
			kind   string
			status string
			price  int64
			at     int64
		)
		if err := rows.Scan(&kind, &evt.ID, &evt.Holder, &price, &evt.Message, &status, &evt.TxID, &evt.Error, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Kind = Kind(kind)
		evt.Status = crown.ClaimStatus(status)
		evt.Price = uint64(price)
		evt.At = fromMillis(at)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func toInt64(price uint64) (int64, error) {
	if price > math.MaxInt64 {
		return 0, fmt.Errorf("price %d does not fit the journal", price)
	}
	return int64(price), nil
}
