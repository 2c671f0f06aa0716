package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/docassist/internal/domain/workspace"
	"github.com/yanqian/docassist/internal/infra/config"
	apperrors "github.com/yanqian/docassist/pkg/errors"
	"github.com/yanqian/docassist/pkg/metrics"
)

// WorkspaceService is the document workflow exposed over HTTP.
type WorkspaceService interface {
	Summarize(ctx context.Context, req workspace.SummarizeRequest) (workspace.SummarizeResponse, error)
	Ask(ctx context.Context, req workspace.AskRequest) (workspace.AskResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (workspace.Session, error)
	ListQueries(ctx context.Context, id uuid.UUID) ([]workspace.QueryLog, error)
}

// UsageReporter exposes the inference backend and its token totals.
type UsageReporter interface {
	Mode() string
	Usage() metrics.UsageSnapshot
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	workspace      WorkspaceService
	usage          UsageReporter
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, workspaceSvc WorkspaceService, usage UsageReporter, logger *slog.Logger) *Handler {
	return &Handler{
		workspace:      workspaceSvc,
		usage:          usage,
		maxUploadBytes: cfg.HTTP.MaxUploadBytes,
		logger:         logger.With("component", "http.handler"),
	}
}

type summarizeRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

type answerRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// Summarize handles pasted text.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}

	resp, err := h.workspace.Summarize(c.Request.Context(), workspace.SummarizeRequest{Text: req.Text, Title: req.Title})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummarizeUpload handles a multipart document upload.
func (h *Handler) SummarizeUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "file is required", err))
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "file exceeds maximum allowed size", nil))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return
	}

	resp, err := h.workspace.Summarize(c.Request.Context(), workspace.SummarizeRequest{
		Title: c.PostForm("title"),
		Upload: &workspace.Upload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		},
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Answer handles questions about a session or inline text.
func (h *Handler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}
	askReq := workspace.AskRequest{Question: req.Question, Text: req.Text}
	if raw := strings.TrimSpace(req.SessionID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid session id", err))
			return
		}
		askReq.SessionID = &id
	}

	resp, err := h.workspace.Ask(c.Request.Context(), askReq)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession returns a stored session.
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	session, err := h.workspace.GetSession(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListQueries returns questions asked about a session.
func (h *Handler) ListQueries(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	logs, err := h.workspace.ListQueries(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if logs == nil {
		logs = []workspace.QueryLog{}
	}
	c.JSON(http.StatusOK, gin.H{"queries": logs})
}

// Usage reports the inference backend and accumulated token usage.
func (h *Handler) Usage(c *gin.Context) {
	if h.usage == nil {
		c.JSON(http.StatusOK, gin.H{"mode": "unknown"})
		return
	}
	snapshot := h.usage.Usage()
	c.JSON(http.StatusOK, gin.H{
		"mode":  h.usage.Mode(),
		"calls": snapshot.Calls,
		"usage": snapshot.Usage,
	})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid session id", err))
		return uuid.Nil, false
	}
	return id, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
