// Package session persists the signed-in user's access token and profile across runs.
//
// Two keys are written to durable key/value storage: [KeyAccessToken] (opaque string) and
// [KeyUser] (the profile as JSON). A session is either fully present or absent; [Store.Load]
// never returns one without the other.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/repositories"
	"github.com/desertthunder/bbx/internal/shared"
)

const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

// ErrNoSession is returned by Load when no complete session is stored.
var ErrNoSession = errors.New("no session")

// Store is the persisted session contract.
type Store interface {
	// Save writes token and user together; on error the caller must treat the session as unsaved.
	Save(ctx context.Context, token string, user models.UserProfile) error
	// Load returns the stored session or [ErrNoSession].
	Load(ctx context.Context) (*models.Session, error)
	// Clear removes both values; calling it on an empty store is not an error.
	Clear(ctx context.Context) error
}

// KV is the durable storage a [KVStore] writes to.
type KV interface {
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	SetMany(ctx context.Context, pairs map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

var (
	_ Store = (*KVStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ KV    = (*repositories.KVRepository)(nil)
)

// KVStore implements [Store] over a [KV], normally the SQLite kv table.
type KVStore struct {
	kv     KV
	logger *log.Logger
}

// NewKVStore creates a store writing to kv. A nil logger discards parse warnings.
func NewKVStore(kv KV, logger *log.Logger) *KVStore {
	return &KVStore{kv: kv, logger: logger}
}

// Save writes both keys in one transaction.
func (s *KVStore) Save(ctx context.Context, token string, user models.UserProfile) error {
	pairs, err := encode(token, user)
	if err != nil {
		return err
	}

	if err := s.kv.SetMany(ctx, pairs); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads both keys and decodes the profile.
func (s *KVStore) Load(ctx context.Context) (*models.Session, error) {
	values, err := s.kv.GetMany(ctx, KeyAccessToken, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess, err := decode(values)
	if err != nil && !errors.Is(err, ErrNoSession) {
		s.warn("discarding unreadable session", "error", err)
		return nil, ErrNoSession
	}
	return sess, err
}

// Clear deletes both keys.
func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyAccessToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Token returns the stored access token for request authorization.
func (s *KVStore) Token(ctx context.Context) (string, bool) {
	sess, err := s.Load(ctx)
	if err != nil {
		return "", false
	}
	return sess.AccessToken, true
}

func (s *KVStore) warn(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, kv...)
	}
}

// MemoryStore keeps the two keys in memory, serialized the same way as [KVStore].
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	// Saves counts successful Save calls.
	Saves int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Save(_ context.Context, token string, user models.UserProfile) error {
	pairs, err := encode(token, user)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range pairs {
		m.values[k] = v
	}
	m.Saves++
	return nil
}

func (m *MemoryStore) Load(context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := decode(m.values)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return nil, ErrNoSession
	}
	return sess, err
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyAccessToken)
	delete(m.values, KeyUser)
	return nil
}

// Token returns the stored access token for request authorization.
func (m *MemoryStore) Token(ctx context.Context) (string, bool) {
	sess, err := m.Load(ctx)
	if err != nil {
		return "", false
	}
	return sess.AccessToken, true
}

// Set writes a raw key, bypassing validation. Used to simulate damaged storage.
func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Len reports how many keys are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

func encode(token string, user models.UserProfile) (map[string]string, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: access token is empty", shared.ErrInvalidInput)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", shared.ErrInvalidInput)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return map[string]string{KeyAccessToken: token, KeyUser: string(data)}, nil
}

func decode(values map[string]string) (*models.Session, error) {
	token, hasToken := values[KeyAccessToken]
	raw, hasUser := values[KeyUser]
	if !hasToken || !hasUser || token == "" {
		return nil, ErrNoSession
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to parse stored user: %w", err)
	}

	sess := &models.Session{AccessToken: token, User: user}
	if !sess.Valid() {
		return nil, fmt.Errorf("stored user has no id")
	}
	return sess, nil
}
