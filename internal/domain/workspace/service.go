package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/summarizer"
	apperrors "github.com/yanqian/docassist/pkg/errors"
	"github.com/yanqian/docassist/pkg/util"
)

// Config drives upload limits.
type Config struct {
	MaxUploadBytes int64
}

// Service keeps summarized documents around so questions can be asked later.
type Service struct {
	cfg        Config
	summarizer summarizer.Service
	answers    qa.Service
	sessions   SessionStore
	logs       QueryLogRepository
	storage    ObjectStorage
	reader     DocumentReader
	logger     *slog.Logger
}

// NewService constructs a Service.
func NewService(cfg Config, summarizerSvc summarizer.Service, answerSvc qa.Service, sessions SessionStore, logs QueryLogRepository, storage ObjectStorage, reader DocumentReader, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		summarizer: summarizerSvc,
		answers:    answerSvc,
		sessions:   sessions,
		logs:       logs,
		storage:    storage,
		reader:     reader,
		logger:     logger.With("component", "workspace.service"),
	}
}

// SummarizeRequest carries pasted text or an uploaded file.
type SummarizeRequest struct {
	Text   string
	Title  string
	Upload *Upload
}

// SummarizeResponse returns the stored session and its summary.
type SummarizeResponse struct {
	SessionID  uuid.UUID `json:"sessionId"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Chunks     int       `json:"chunks"`
	DurationMs int64     `json:"durationMs"`
}

// AskRequest asks a question about a stored session or inline text.
type AskRequest struct {
	SessionID *uuid.UUID
	Text      string
	Question  string
}

// AskResponse is returned to the HTTP handler.
type AskResponse struct {
	SessionID  *uuid.UUID `json:"sessionId,omitempty"`
	Answer     string     `json:"answer"`
	Score      float64    `json:"score"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	ChunkIndex int        `json:"chunkIndex"`
	Chunks     int        `json:"chunks"`
	LatencyMs  int64      `json:"latencyMs"`
}

// Summarize condenses the document and stores it with its summary.
// Pasted text takes precedence over an upload.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	id := uuid.New()
	text := req.Text
	source := DocumentSourceText
	title := strings.TrimSpace(req.Title)
	var storageKey string

	if strings.TrimSpace(text) == "" && req.Upload != nil {
		extracted, key, err := s.ingest(ctx, id, *req.Upload)
		if err != nil {
			return SummarizeResponse{}, err
		}
		text, storageKey, source = extracted, key, DocumentSourceUpload
		if title == "" {
			title = strings.TrimSpace(req.Upload.Filename)
		}
		if strings.TrimSpace(text) == "" {
			return SummarizeResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "uploaded document has no extractable text", nil)
		}
	}
	if strings.TrimSpace(text) == "" {
		return SummarizeResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "provide text or upload a file", nil)
	}
	if title == "" {
		title = defaultTitle(text)
	}

	resp, err := s.summarizer.Summarize(ctx, summarizer.Request{Text: text})
	if err != nil {
		return SummarizeResponse{}, err
	}

	now := util.NowUTC()
	session := Session{
		ID:         id,
		Title:      title,
		Source:     source,
		Original:   text,
		Summary:    resp.Summary,
		Chunks:     resp.Chunks,
		StorageKey: storageKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return SummarizeResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to persist session", err)
	}
	s.logger.Info("document summarized", "session_id", id, "source", source, "chunks", resp.Chunks, "duration_ms", resp.DurationMs)

	return SummarizeResponse{
		SessionID:  id,
		Title:      title,
		Summary:    resp.Summary,
		Chunks:     resp.Chunks,
		DurationMs: resp.DurationMs,
	}, nil
}

func (s *Service) ingest(ctx context.Context, id uuid.UUID, upload Upload) (string, string, error) {
	if len(upload.Data) == 0 {
		return "", "", apperrors.Wrap(apperrors.CodeInvalidInput, "file content cannot be empty", nil)
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(upload.Data)) > s.cfg.MaxUploadBytes {
		return "", "", apperrors.Wrap(apperrors.CodeInvalidInput, "file exceeds maximum allowed size", nil)
	}
	mime := upload.ContentType
	if mime == "" {
		mime = http.DetectContentType(upload.Data)
	}

	var storageKey string
	if s.storage != nil {
		key := fmt.Sprintf("uploads/%s/%s", id.String(), sanitizeFilename(upload.Filename))
		obj, err := s.storage.Put(ctx, key, upload.Data, mime)
		if err != nil {
			return "", "", apperrors.Wrap(apperrors.CodeStorage, "failed to store file", err)
		}
		storageKey = obj.Key
	}

	text, err := s.reader.Read(ctx, upload)
	if err != nil {
		return "", "", err
	}
	return text, storageKey, nil
}

// Ask answers a question from the session's original text or the inline text.
func (s *Service) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	text := req.Text
	if req.SessionID != nil {
		session, err := s.GetSession(ctx, *req.SessionID)
		if err != nil {
			return AskResponse{}, err
		}
		text = session.Original
	}

	start := time.Now()
	result, err := s.answers.Answer(ctx, qa.Request{Question: req.Question, Text: text})
	if err != nil {
		return AskResponse{}, err
	}
	latency := util.ElapsedMs(start)

	if req.SessionID != nil && s.logs != nil {
		entry := QueryLog{
			ID:         uuid.New(),
			SessionID:  *req.SessionID,
			Question:   strings.TrimSpace(req.Question),
			Answer:     result.Text,
			Score:      result.Score,
			ChunkIndex: result.ChunkIndex,
			LatencyMs:  latency,
			CreatedAt:  util.NowUTC(),
		}
		if err := s.logs.Append(ctx, entry); err != nil {
			s.logger.Warn("failed to append query log", "session_id", *req.SessionID, "error", err)
		}
	}

	return AskResponse{
		SessionID:  req.SessionID,
		Answer:     result.Text,
		Score:      result.Score,
		Start:      result.Start,
		End:        result.End,
		ChunkIndex: result.ChunkIndex,
		Chunks:     result.Chunks,
		LatencyMs:  latency,
	}, nil
}

// GetSession fetches a stored session.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	session, found, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load session", err)
	}
	if !found {
		return Session{}, apperrors.Wrap(apperrors.CodeNotFound, "session not found", nil)
	}
	return session, nil
}

// ListQueries returns the questions asked against a session.
func (s *Service) ListQueries(ctx context.Context, id uuid.UUID) ([]QueryLog, error) {
	if _, err := s.GetSession(ctx, id); err != nil {
		return nil, err
	}
	if s.logs == nil {
		return nil, nil
	}
	logs, err := s.logs.ListBySession(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list queries", err)
	}
	return logs, nil
}

func defaultTitle(text string) string {
	fields := strings.Fields(text)
	if len(fields) > 8 {
		fields = fields[:8]
	}
	return snippet(strings.Join(fields, " "), 60)
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" {
		return "document"
	}
	return name
}

func snippet(body string, max int) string {
	runes := []rune(body)
	if max <= 0 || len(runes) <= max {
		return body
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
