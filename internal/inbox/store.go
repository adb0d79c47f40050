// Package inbox archives contact messages in SQLite.
package inbox

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Zachkp/folio/internal/contact"
)

// Delivery states of an archived message.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Entry is one archived message.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	Origin     string    `json:"origin,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Store is the message archive.
type Store struct {
	db *sql.DB
}

// Open creates or opens the archive at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates a throwaway in-memory archive.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// every connection would get its own empty database
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    origin TEXT NOT NULL DEFAULT '',
    received_at TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending','delivered','failed')),
    error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at);
`

// fixed width so received_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Save archives msg as pending and returns its id.
func (s *Store) Save(ctx context.Context, msg contact.Message) (string, error) {
	id := uuid.NewString()
	received := msg.SentAt
	if received.IsZero() {
		received = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, subject, body, origin, received_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Origin,
		received.UTC().Format(timeLayout), StatusPending,
	)
	if err != nil {
		return "", fmt.Errorf("inserting message: %w", err)
	}
	return id, nil
}

// MarkDelivered records the outcome of a delivery attempt.
func (s *Store) MarkDelivered(ctx context.Context, id string, sendErr error) error {
	status, detail := StatusDelivered, ""
	if sendErr != nil {
		status, detail = StatusFailed, sendErr.Error()
	}
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET status = ?, error = ? WHERE id = ?`, status, detail, id)
	if err != nil {
		return fmt.Errorf("updating message %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s not found", id)
	}
	return nil
}

// Recent returns up to limit messages, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, subject, body, origin, received_at, status, error
		FROM messages
		ORDER BY received_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var received string
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Subject, &e.Message, &e.Origin, &received, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if e.ReceivedAt, err = time.Parse(timeLayout, received); err != nil {
			return nil, fmt.Errorf("parsing received_at of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes messages received before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE received_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning messages: %w", err)
	}
	return res.RowsAffected()
}

// Hasher turns client addresses into stable, salted, truncated digests so
// the archive never holds a raw IP.
type Hasher struct {
	salt string
}

// NewHasher uses salt, or a random one when salt is empty (digests then
// change across restarts).
func NewHasher(salt string) *Hasher {
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			panic(fmt.Sprintf("inbox: generating salt: %v", err))
		}
		salt = hex.EncodeToString(b)
	}
	return &Hasher{salt: salt}
}

// Hash digests ip.
func (h *Hasher) Hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])[:16]
}
