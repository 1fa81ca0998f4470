package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const lockTimeout = 5 * time.Second

// Store is a small sqlite-backed key/value cache for chain reads that rarely
// change, such as reserve debt token addresses.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

type Result struct {
	Hit      bool
	Value    string
	Age      time.Duration
	Stale    bool
	TooStale bool
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"CREATE TABLE IF NOT EXISTS chain_reads (key TEXT PRIMARY KEY, value TEXT NOT NULL, created_at INTEGER NOT NULL, ttl_seconds INTEGER NOT NULL);",
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init cache schema: %w", err)
		}
	}

	store := &Store{db: db, lock: flock.New(lockPath)}
	_ = store.Prune(context.Background(), 0)
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Prune deletes entries older than their TTL plus grace.
func (s *Store) Prune(ctx context.Context, grace time.Duration) error {
	if s == nil || s.db == nil {
		return nil
	}
	cutoff := time.Now().UTC().Add(-grace).Unix()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chain_reads WHERE created_at + ttl_seconds < ?", cutoff); err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	return nil
}

// Get returns the entry for key. A negative maxStale accepts any age.
func (s *Store) Get(ctx context.Context, key string, maxStale time.Duration) (Result, error) {
	var (
		value       string
		createdUnix int64
		ttlSeconds  int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT value, created_at, ttl_seconds FROM chain_reads WHERE key = ?", key).Scan(&value, &createdUnix, &ttlSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("cache read: %w", err)
	}

	age := time.Since(time.Unix(createdUnix, 0).UTC())
	if age < 0 {
		age = 0
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	stale := age > ttl
	return Result{
		Hit:      true,
		Value:    value,
		Age:      age,
		Stale:    stale,
		TooStale: stale && maxStale >= 0 && age > ttl+maxStale,
	}, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	ttlSeconds := int64(ttl.Seconds())
	if ttlSeconds <= 0 {
		ttlSeconds = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chain_reads (key, value, created_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			created_at=excluded.created_at,
			ttl_seconds=excluded.ttl_seconds
	`, key, value, time.Now().UTC().Unix(), ttlSeconds)
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// DebtTokenKey scopes a debt token entry to a chain and lending pool.
func DebtTokenKey(chainID string, pool, asset common.Address) string {
	return strings.ToLower(fmt.Sprintf("debt_token|%s|%s|%s", chainID, pool.Hex(), asset.Hex()))
}

// ReserveSource is the uncached debt token lookup.
type ReserveSource interface {
	VariableDebtToken(ctx context.Context, asset common.Address) (common.Address, error)
}

// Reserves caches VariableDebtToken answers in a Store. A stale entry is
// refreshed; if the refresh fails the stale value is served while it is
// within MaxStale.
type Reserves struct {
	Store    *Store
	Source   ReserveSource
	ChainID  string
	Pool     common.Address
	TTL      time.Duration
	MaxStale time.Duration
	Logger   *zap.Logger
}

func (r *Reserves) VariableDebtToken(ctx context.Context, asset common.Address) (common.Address, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if r.Store == nil {
		return r.Source.VariableDebtToken(ctx, asset)
	}
	key := DebtTokenKey(r.ChainID, r.Pool, asset)
	res, err := r.Store.Get(ctx, key, r.MaxStale)
	if err != nil {
		log.Debug("debt token cache read failed", zap.String("key", key), zap.Error(err))
	}
	if err == nil && res.Hit && !res.Stale && common.IsHexAddress(res.Value) {
		return common.HexToAddress(res.Value), nil
	}

	debt, fetchErr := r.Source.VariableDebtToken(ctx, asset)
	if fetchErr != nil {
		if res.Hit && !res.TooStale && common.IsHexAddress(res.Value) {
			log.Warn("serving stale debt token", zap.String("asset", asset.Hex()), zap.Duration("age", res.Age), zap.Error(fetchErr))
			return common.HexToAddress(res.Value), nil
		}
		return common.Address{}, fetchErr
	}
	if debt != (common.Address{}) {
		if err := r.Store.Set(ctx, key, debt.Hex(), r.TTL); err != nil {
			log.Debug("debt token cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return debt, nil
}
