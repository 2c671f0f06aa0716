package workspace

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// SessionStore keeps summarized documents between requests.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, id uuid.UUID) (Session, bool, error)
}

// QueryLogRepository records question/answer pairs.
type QueryLogRepository interface {
	Append(ctx context.Context, log QueryLog) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]QueryLog, error)
}

// ObjectStorage abstracts blob storage (R2/S3/local).
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// DocumentReader turns a raw upload into a single text blob.
type DocumentReader interface {
	Read(ctx context.Context, upload Upload) (string, error)
}
