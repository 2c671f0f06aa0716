package querylog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
)

// MemoryRepository keeps query logs in memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID][]domain.QueryLog
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[uuid.UUID][]domain.QueryLog)}
}

func (r *MemoryRepository) Append(_ context.Context, log domain.QueryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[log.SessionID] = append(r.data[log.SessionID], log)
	return nil
}

// ListBySession returns the newest entries first.
func (r *MemoryRepository) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.QueryLog, error) {
	r.mu.RLock()
	logs := append([]domain.QueryLog(nil), r.data[sessionID]...)
	r.mu.RUnlock()
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs, nil
}

var _ domain.QueryLogRepository = (*MemoryRepository)(nil)
