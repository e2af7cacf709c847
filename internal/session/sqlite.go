package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/quartz"
	_ "modernc.org/sqlite"

	"github.com/avkor/shelltrack/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	user_id    TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore persists sessions in a sqlite database, one row per
// user with the session JSON-encoded.
type SQLiteStore struct {
	db    *sql.DB
	clock quartz.Clock
}

// OpenSQLite opens (creating if needed) a sqlite-backed store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	return OpenSQLiteWithClock(path, quartz.NewReal())
}

// OpenSQLiteWithClock opens a sqlite store with an injected clock.
func OpenSQLiteWithClock(path string, clock quartz.Clock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent users.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SQLiteStore{db: db, clock: clock}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (*game.Session, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM sessions WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session %s: %w", userID, err)
	}

	var sess game.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &sess, true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, userID string, sess *game.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", userID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, string(data), s.clock.Now().Unix())
	if err != nil {
		return fmt.Errorf("store session %s: %w", userID, err)
	}
	return nil
}

// ClearPreserving implements Store.
func (s *SQLiteStore) ClearPreserving(ctx context.Context, userID string) error {
	sess, ok, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	sess.ClearGame()
	return s.Put(ctx, userID, sess)
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}

// Sweep drops sessions idle for longer than idleFor and returns how
// many rows were removed.
func (s *SQLiteStore) Sweep(ctx context.Context, idleFor time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-idleFor).Unix()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return res.RowsAffected()
}
