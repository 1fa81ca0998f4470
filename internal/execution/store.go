package execution

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const storeLockTimeout = 5 * time.Second

// Store persists planned loop actions in sqlite. Writes are serialized across
// processes with a file lock.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func OpenStore(path, lockPath string) (*Store, error) {
	for _, dir := range []string{filepath.Dir(path), filepath.Dir(lockPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create action store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open action sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS loop_actions (
			action_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			from_address TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_loop_actions_status_updated ON loop_actions(status, updated_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init action schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, action Action) error {
	if strings.TrimSpace(action.ActionID) == "" {
		return fmt.Errorf("save action: missing action id")
	}
	lockCtx, cancel := context.WithTimeout(ctx, storeLockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock action store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock action store: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	now := time.Now().UTC().Unix()
	createdUnix := unixOr(action.CreatedAt, now)
	updatedUnix := unixOr(action.UpdatedAt, now)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO loop_actions (action_id, mode, status, chain_id, from_address, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(action_id) DO UPDATE SET
			mode=excluded.mode,
			status=excluded.status,
			chain_id=excluded.chain_id,
			from_address=excluded.from_address,
			updated_at=excluded.updated_at,
			payload=excluded.payload
	`, action.ActionID, action.Mode, string(action.Status), action.ChainID, strings.ToLower(action.FromAddress), createdUnix, updatedUnix, payload)
	if err != nil {
		return fmt.Errorf("save action: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, actionID string) (Action, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM loop_actions WHERE action_id = ?", actionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Action{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("action not found: %s", actionID))
		}
		return Action{}, fmt.Errorf("read action: %w", err)
	}
	var action Action
	if err := json.Unmarshal(payload, &action); err != nil {
		return Action{}, fmt.Errorf("decode action payload: %w", err)
	}
	return action, nil
}

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	Status string
	Mode   string
	From   string
	Limit  int
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Action, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	var (
		clauses []string
		args    []any
	)
	if v := strings.TrimSpace(filter.Status); v != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(filter.Mode); v != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(filter.From); v != "" {
		clauses = append(clauses, "from_address = ?")
		args = append(args, strings.ToLower(v))
	}
	query := "SELECT payload FROM loop_actions"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	actions := make([]Action, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		var action Action
		if err := json.Unmarshal(payload, &action); err != nil {
			return nil, fmt.Errorf("decode action row: %w", err)
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}
	return actions, nil
}

func unixOr(v string, fallback int64) int64 {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return fallback
	}
	return t.UTC().Unix()
}
