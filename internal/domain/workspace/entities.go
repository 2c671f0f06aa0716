package workspace

import (
	"time"

	"github.com/google/uuid"
)

// DocumentSource describes how the document text was provided.
type DocumentSource string

const (
	DocumentSourceText   DocumentSource = "text"
	DocumentSourceUpload DocumentSource = "upload"
)

// Session holds a summarized document so later questions can reuse it.
type Session struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Source     DocumentSource `json:"source"`
	Original   string         `json:"original"`
	Summary    string         `json:"summary"`
	Chunks     int            `json:"chunks"`
	StorageKey string         `json:"storageKey,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// QueryLog records a single question/answer exchange.
type QueryLog struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"sessionId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Score      float64   `json:"score"`
	ChunkIndex int       `json:"chunkIndex"`
	LatencyMs  int64     `json:"latencyMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Upload is a raw file submitted for summarization.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
