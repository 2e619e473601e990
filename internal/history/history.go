package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Entry is one recorded pipeline run.
type Entry struct {
	RequestID  string    `json:"requestId"`
	SourceURL  string    `json:"sourceUrl"`
	Channel    string    `json:"channel"`
	Outcome    string    `json:"outcome"`
	RemoteAddr string    `json:"remoteAddr,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists one row per pipeline run for operational history.
// It holds no media content; artifacts never touch the database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if needed) the history database at dbPath. The
// parent directory must already exist and be writable; LoadConfig
// validates that before this runs.
func New(ctx context.Context, dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	// Writes are rare (one per request) and reads rarer
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	logging.Info("History database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL UNIQUE,
		source_url TEXT NOT NULL,
		channel TEXT NOT NULL,
		outcome TEXT NOT NULL,
		remote_addr TEXT,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
	CREATE INDEX IF NOT EXISTS idx_requests_outcome ON requests(outcome);
	`

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(opCtx, schema)
	if err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("initialize_schema", "error").Inc()
		return err
	}
	metrics.HistoryQueriesTotal.WithLabelValues("initialize_schema", "success").Inc()
	return nil
}

// Record inserts the run for a request id. Re-recording the same id
// updates the outcome, so a late stage can overwrite an earlier
// provisional row.
func (s *Store) Record(ctx context.Context, e Entry) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(opCtx, `
		INSERT INTO requests (request_id, source_url, channel, outcome, remote_addr)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET outcome = excluded.outcome`,
		e.RequestID, e.SourceURL, e.Channel, e.Outcome, e.RemoteAddr,
	)
	if err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("record", "error").Inc()
		return fmt.Errorf("failed to record request history: %w", err)
	}
	metrics.HistoryQueriesTotal.WithLabelValues("record", "success").Inc()
	return nil
}

// Recent returns the most recent limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(opCtx, `
		SELECT request_id, source_url, channel, outcome, COALESCE(remote_addr, ''), created_at
		FROM requests
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("recent", "error").Inc()
		return nil, fmt.Errorf("failed to query request history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close history rows: %v", err)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.RequestID, &e.SourceURL, &e.Channel, &e.Outcome, &e.RemoteAddr, &createdAt); err != nil {
			metrics.HistoryQueriesTotal.WithLabelValues("recent", "error").Inc()
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("recent", "error").Inc()
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	metrics.HistoryQueriesTotal.WithLabelValues("recent", "success").Inc()
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
