package querylog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
)

func TestMemoryRepositoryListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	session := uuid.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, domain.QueryLog{ID: uuid.New(), SessionID: session, Question: "first", CreatedAt: base}))
	require.NoError(t, repo.Append(ctx, domain.QueryLog{ID: uuid.New(), SessionID: session, Question: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Append(ctx, domain.QueryLog{ID: uuid.New(), SessionID: uuid.New(), Question: "other", CreatedAt: base}))

	logs, err := repo.ListBySession(ctx, session)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "second", logs[0].Question)
	require.Equal(t, "first", logs[1].Question)

	empty, err := repo.ListBySession(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, empty)
}
