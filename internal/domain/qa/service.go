package qa

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/docassist/internal/domain/pipeline"
	"github.com/yanqian/docassist/internal/domain/segmenter"
	apperrors "github.com/yanqian/docassist/pkg/errors"
	"github.com/yanqian/docassist/pkg/util"
)

// Service answers a question against a document.
type Service interface {
	Answer(ctx context.Context, req Request) (Result, error)
}

// Capability answers a question from one bounded context.
// A higher Score must always mean higher confidence.
type Capability interface {
	Answer(ctx context.Context, question, passage string) (Answer, error)
}

// CapabilityFunc adapts a plain function to Capability.
type CapabilityFunc func(ctx context.Context, question, passage string) (Answer, error)

// Answer calls f.
func (f CapabilityFunc) Answer(ctx context.Context, question, passage string) (Answer, error) {
	return f(ctx, question, passage)
}

type service struct {
	cfg        Config
	segmenter  segmenter.Segmenter
	capability Capability
	logger     *slog.Logger
}

// NewService is a wire provider for the question-answering domain.
func NewService(cfg Config, capability Capability, logger *slog.Logger) (Service, error) {
	seg, err := segmenter.New(cfg.ChunkChars)
	if err != nil {
		return nil, err
	}
	return &service{
		cfg:        cfg,
		segmenter:  seg,
		capability: capability,
		logger:     logger.With("component", "qa.service"),
	}, nil
}

// Ask answers question against text with the default chunk budget.
func Ask(ctx context.Context, question, text string, capability Capability) (Result, error) {
	svc, err := NewService(Config{ChunkChars: segmenter.DefaultAnswerChunkChars}, capability, slog.New(slog.DiscardHandler))
	if err != nil {
		return Result{}, err
	}
	return svc.Answer(ctx, Request{Question: question, Text: text})
}

func (s *service) Answer(ctx context.Context, req Request) (Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	start := time.Now()
	chunks := s.segmenter.Segment(req.Text)
	if len(chunks) == 0 {
		return Result{}, apperrors.Wrap(apperrors.CodeNoContext, "no document text to answer from", nil)
	}
	s.logger.Debug("answering question", "chunks", len(chunks), "chunk_chars", s.segmenter.MaxChars())

	answers, err := pipeline.Run(ctx, chunks, s.cfg.Concurrency, func(ctx context.Context, chunk segmenter.Chunk) (Answer, error) {
		return s.capability.Answer(ctx, question, chunk.Text)
	})
	if err != nil {
		s.logger.Error("chunk answering failed", "error", err)
		return Result{}, err
	}

	best, _ := pipeline.SelectBest(answers, func(a Answer) float64 { return a.Score })
	s.logger.Debug("best answer selected", "chunk", chunks[best].Index, "score", answers[best].Score)
	return Result{
		Answer:     answers[best],
		ChunkIndex: chunks[best].Index,
		Chunks:     len(chunks),
		DurationMs: util.ElapsedMs(start),
	}, nil
}
