package querylog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
)

// Schema creates the query log table when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS docassist_query_logs (
	id          UUID PRIMARY KEY,
	session_id  UUID NOT NULL,
	question    TEXT NOT NULL,
	answer      TEXT NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	chunk_index INTEGER NOT NULL,
	latency_ms  BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS docassist_query_logs_session_idx ON docassist_query_logs (session_id, created_at DESC);
`

// PostgresRepository stores query logs in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies Schema.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

func (r *PostgresRepository) Append(ctx context.Context, log domain.QueryLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO docassist_query_logs (id, session_id, question, answer, score, chunk_index, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, log.ID, log.SessionID, log.Question, log.Answer, log.Score, log.ChunkIndex, log.LatencyMs, log.CreatedAt)
	return err
}

func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.QueryLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, question, answer, score, chunk_index, latency_ms, created_at
		FROM docassist_query_logs
		WHERE session_id = $1
		ORDER BY created_at DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.QueryLog
	for rows.Next() {
		var entry domain.QueryLog
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Question, &entry.Answer, &entry.Score, &entry.ChunkIndex, &entry.LatencyMs, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

var _ domain.QueryLogRepository = (*PostgresRepository)(nil)
