package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/tudu/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// defaultListLimit bounds activity queries that pass a non-positive limit.
const defaultListLimit = 50

// Journal stores dispatched intents in a private in-memory database.
// Nothing is written to disk; the journal is gone once it is closed.
type Journal struct {
	db   *sql.DB
	name string
}

// OpenInMemory opens a fresh in-memory journal.
func OpenInMemory() (*Journal, error) {
	name := "tudu-journal-" + uuid.NewString()
	db, err := sql.Open(driverName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// A memory database lives only as long as a connection holds it.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	j := &Journal{db: db, name: name}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Name returns the in-memory database name backing this journal.
func (j *Journal) Name() string {
	return j.name
}

// Close closes the requested operation.
func (j *Journal) Close() error {
	return j.db.Close()
}

// migrate handles migrate.
func (j *Journal) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS change_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			operation TEXT NOT NULL,
			item_index INTEGER NOT NULL DEFAULT -1,
			text TEXT NOT NULL DEFAULT '',
			item_count INTEGER NOT NULL DEFAULT 0,
			pane TEXT NOT NULL DEFAULT 'welcome',
			changed INTEGER NOT NULL DEFAULT 0,
			occurred_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_operation ON change_events(operation, seq DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// AppendChangeEvent inserts one journal entry. A zero Seq lets the database assign one.
func (j *Journal) AppendChangeEvent(ctx context.Context, event domain.ChangeEvent) error {
	id := strings.TrimSpace(event.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if strings.TrimSpace(string(event.Operation)) == "" {
		return errors.New("change event operation is required")
	}
	var seq any
	if event.Seq > 0 {
		seq = event.Seq
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO change_events(seq, id, operation, item_index, text, item_count, pane, changed, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		seq,
		id,
		string(event.Operation),
		event.Index,
		event.Text,
		event.ItemCount,
		event.Pane,
		boolToInt(event.Changed),
		ts(normalizeEventTS(event.OccurredAt)),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// ListChangeEvents lists the most recent entries, newest first.
func (j *Journal) ListChangeEvents(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, operation, item_index, text, item_count, pane, changed, occurred_at
		FROM change_events
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query change events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event      domain.ChangeEvent
			opRaw      string
			changed    int
			createdRaw string
		)
		if err := rows.Scan(&event.Seq, &event.ID, &opRaw, &event.Index, &event.Text, &event.ItemCount, &event.Pane, &changed, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}
		event.Operation = domain.IntentKind(opRaw)
		event.Changed = changed != 0
		event.OccurredAt = parseTS(createdRaw)
		out = append(out, event)
	}
	return out, rows.Err()
}

// CountChangeEvents returns the number of journal entries.
func (j *Journal) CountChangeEvents(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM change_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count change events: %w", err)
	}
	return n, nil
}

// normalizeEventTS defaults missing timestamps to now.
func normalizeEventTS(in time.Time) time.Time {
	if in.IsZero() {
		return time.Now().UTC()
	}
	return in.UTC()
}

// boolToInt encodes booleans for INTEGER columns.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
