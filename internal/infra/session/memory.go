package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
)

// MemoryStore keeps sessions in process memory with an optional TTL.
type MemoryStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	data map[uuid.UUID]entry
}

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// NewMemoryStore constructs a store. A non-positive ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[uuid.UUID]entry),
	}
}

func (s *MemoryStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}
	s.data[session.ID] = entry{session: session, expiresAt: expiresAt}
	s.evictLocked(now)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok || e.expired(s.now()) {
		return domain.Session{}, false, nil
	}
	return e.session, true, nil
}

func (s *MemoryStore) evictLocked(now time.Time) {
	for id, e := range s.data {
		if e.expired(now) {
			delete(s.data, id)
		}
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

var _ domain.SessionStore = (*MemoryStore)(nil)
