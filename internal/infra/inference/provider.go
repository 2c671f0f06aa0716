package inference

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/summarizer"
	"github.com/yanqian/docassist/internal/infra/llm/chatgpt"
	"github.com/yanqian/docassist/pkg/metrics"
)

const (
	ModeChatGPT = "chatgpt"
	ModeOffline = "offline"
)

// Options select and tune the inference backend.
type Options struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float32
	Timeout       time.Duration
	SummaryPrompt string
	AnswerPrompt  string
	Encoding      string
	Bounds        SummaryBounds
}

// Provider is the process wide inference handle. The backing capabilities
// are built on first use and shared read-only afterwards.
type Provider struct {
	opts     Options
	recorder *metrics.Recorder
	logger   *slog.Logger

	once       sync.Once
	mode       string
	summarizer summarizer.Capability
	answerer   qa.Capability
}

// NewProvider constructs an unloaded provider.
func NewProvider(opts Options, recorder *metrics.Recorder, logger *slog.Logger) *Provider {
	return &Provider{
		opts:     opts,
		recorder: recorder,
		logger:   logger.With("component", "inference.provider"),
	}
}

func (p *Provider) load() {
	p.once.Do(func() {
		if strings.TrimSpace(p.opts.APIKey) != "" {
			client, err := chatgpt.NewClient(p.opts.APIKey, p.opts.BaseURL, p.opts.Timeout)
			if err == nil {
				tokenizer := NewTiktokenTokenizer(p.opts.Encoding, p.logger)
				p.summarizer = NewChatGPTSummarizer(client, ChatSettings{
					Model:       p.opts.Model,
					Temperature: p.opts.Temperature,
					Prompt:      p.opts.SummaryPrompt,
				}, p.opts.Bounds, tokenizer, p.recorder, p.logger)
				p.answerer = NewChatGPTAnswerer(client, ChatSettings{
					Model:       p.opts.Model,
					Temperature: p.opts.Temperature,
					Prompt:      p.opts.AnswerPrompt,
				}, p.recorder, p.logger)
				p.mode = ModeChatGPT
				p.logger.Info("inference backend ready", "mode", p.mode, "model", p.opts.Model)
				return
			}
			p.logger.Warn("chatgpt client unavailable, using offline inference", "error", err)
		}
		p.summarizer = NewFrequencySummarizer(p.opts.Bounds.MinLength, p.opts.Bounds.MaxLength)
		p.answerer = LexicalAnswerer{}
		p.mode = ModeOffline
		p.logger.Info("inference backend ready", "mode", p.mode)
	})
}

// Mode reports which backend serves requests.
func (p *Provider) Mode() string {
	p.load()
	return p.mode
}

// Summarize implements summarizer.Capability.
func (p *Provider) Summarize(ctx context.Context, text string) (string, error) {
	p.load()
	return p.summarizer.Summarize(ctx, text)
}

// Answer implements qa.Capability.
func (p *Provider) Answer(ctx context.Context, question, passage string) (qa.Answer, error) {
	p.load()
	return p.answerer.Answer(ctx, question, passage)
}

// Usage returns the token totals recorded by the backend.
func (p *Provider) Usage() metrics.UsageSnapshot {
	return p.recorder.Snapshot()
}

var (
	_ summarizer.Capability = (*Provider)(nil)
	_ qa.Capability         = (*Provider)(nil)
)
