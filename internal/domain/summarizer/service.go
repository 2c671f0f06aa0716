package summarizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/docassist/internal/domain/pipeline"
	"github.com/yanqian/docassist/internal/domain/segmenter"
	"github.com/yanqian/docassist/pkg/util"
)

// Service exposes summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

// Capability condenses a single bounded chunk of text.
type Capability interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// CapabilityFunc adapts a plain function to Capability.
type CapabilityFunc func(ctx context.Context, text string) (string, error)

// Summarize calls f.
func (f CapabilityFunc) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

type service struct {
	cfg        Config
	segmenter  segmenter.Segmenter
	capability Capability
	logger     *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, capability Capability, logger *slog.Logger) (Service, error) {
	seg, err := segmenter.New(cfg.ChunkChars)
	if err != nil {
		return nil, err
	}
	return &service{
		cfg:        cfg,
		segmenter:  seg,
		capability: capability,
		logger:     logger.With("component", "summarizer.service"),
	}, nil
}

func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	chunks := s.segmenter.Segment(req.Text)
	if len(chunks) == 0 {
		return Response{}, nil
	}
	s.logger.Debug("summarizing document", "chunks", len(chunks), "chunk_chars", s.segmenter.MaxChars())

	parts, err := pipeline.Run(ctx, chunks, s.cfg.Concurrency, func(ctx context.Context, chunk segmenter.Chunk) (string, error) {
		return s.capability.Summarize(ctx, chunk.Text)
	})
	if err != nil {
		s.logger.Error("chunk summarization failed", "error", err)
		return Response{}, err
	}

	return Response{
		Summary:    pipeline.JoinSummaries(parts),
		Chunks:     len(chunks),
		DurationMs: util.ElapsedMs(start),
	}, nil
}

// Summarize runs the pipeline once with the default summarization budget.
func Summarize(ctx context.Context, text string, capability Capability) (string, error) {
	svc, err := NewService(Config{ChunkChars: segmenter.DefaultSummaryChunkChars}, capability, slog.New(slog.DiscardHandler))
	if err != nil {
		return "", err
	}
	resp, err := svc.Summarize(ctx, Request{Text: text})
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}
