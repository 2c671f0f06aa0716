package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/summarizer"
	"github.com/yanqian/docassist/internal/infra/llm/chatgpt"
	"github.com/yanqian/docassist/pkg/metrics"
)

const (
	defaultSummaryPrompt = "You are a concise assistant. Summarize the user's text in plain prose, keeping the key facts and omitting filler."
	defaultAnswerPrompt  = "You answer questions using only the provided context. Reply with a JSON object {\"answer\": string, \"score\": number}. The answer must be copied verbatim from the context. The score is your confidence between 0 and 1. Use an empty answer and score 0 when the context does not contain the answer."
)

// ChatCompleter is the subset of the ChatGPT client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// ChatSettings are shared by the ChatGPT backed capabilities.
type ChatSettings struct {
	Model       string
	Temperature float32
	Prompt      string
}

// SummaryBounds bound the generated summary and the accepted input.
type SummaryBounds struct {
	MinLength      int
	MaxLength      int
	MaxInputTokens int
}

// ChatGPTSummarizer summarizes one chunk per completion call.
type ChatGPTSummarizer struct {
	client    ChatCompleter
	settings  ChatSettings
	bounds    SummaryBounds
	tokenizer Tokenizer
	recorder  *metrics.Recorder
	logger    *slog.Logger
}

// NewChatGPTSummarizer constructs the summarizer.
func NewChatGPTSummarizer(client ChatCompleter, settings ChatSettings, bounds SummaryBounds, tokenizer Tokenizer, recorder *metrics.Recorder, logger *slog.Logger) *ChatGPTSummarizer {
	if strings.TrimSpace(settings.Prompt) == "" {
		settings.Prompt = defaultSummaryPrompt
	}
	if tokenizer == nil {
		tokenizer = WhitespaceTokenizer{}
	}
	return &ChatGPTSummarizer{
		client:    client,
		settings:  settings,
		bounds:    bounds,
		tokenizer: tokenizer,
		recorder:  recorder,
		logger:    logger.With("component", "inference.chatgpt_summarizer"),
	}
}

// Summarize truncates oversized input to the token budget instead of failing.
func (s *ChatGPTSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	input := text
	if s.bounds.MaxInputTokens > 0 {
		input = s.tokenizer.Truncate(text, s.bounds.MaxInputTokens)
		if len(input) < len(text) {
			s.logger.Debug("chunk truncated", "max_input_tokens", s.bounds.MaxInputTokens, "original_bytes", len(text), "kept_bytes", len(input))
		}
	}
	req := chatgpt.ChatCompletionRequest{
		Model:       s.settings.Model,
		Temperature: s.settings.Temperature,
		MaxTokens:   s.bounds.MaxLength,
		Messages: []chatgpt.Message{
			{Role: "system", Content: s.systemPrompt()},
			{Role: "user", Content: input},
		},
	}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	s.recorder.Add(resp.Usage.TokenUsage())
	return resp.Content(), nil
}

func (s *ChatGPTSummarizer) systemPrompt() string {
	if s.bounds.MinLength <= 0 && s.bounds.MaxLength <= 0 {
		return s.settings.Prompt
	}
	return fmt.Sprintf("%s Use between %d and %d words.", s.settings.Prompt, s.bounds.MinLength, s.bounds.MaxLength)
}

// ChatGPTAnswerer extracts an answer span with a confidence score.
type ChatGPTAnswerer struct {
	client   ChatCompleter
	settings ChatSettings
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewChatGPTAnswerer constructs the answerer.
func NewChatGPTAnswerer(client ChatCompleter, settings ChatSettings, recorder *metrics.Recorder, logger *slog.Logger) *ChatGPTAnswerer {
	if strings.TrimSpace(settings.Prompt) == "" {
		settings.Prompt = defaultAnswerPrompt
	}
	return &ChatGPTAnswerer{
		client:   client,
		settings: settings,
		recorder: recorder,
		logger:   logger.With("component", "inference.chatgpt_answerer"),
	}
}

type answerPayload struct {
	Answer *string  `json:"answer"`
	Score  *float64 `json:"score"`
}

func (a *ChatGPTAnswerer) Answer(ctx context.Context, question, passage string) (qa.Answer, error) {
	req := chatgpt.ChatCompletionRequest{
		Model:          a.settings.Model,
		Temperature:    a.settings.Temperature,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
		Messages: []chatgpt.Message{
			{Role: "system", Content: a.settings.Prompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", passage, question)},
		},
	}
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return qa.Answer{}, err
	}
	a.recorder.Add(resp.Usage.TokenUsage())
	return parseAnswer(resp.Content(), passage)
}

func parseAnswer(raw, passage string) (qa.Answer, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var payload answerPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return qa.Answer{}, fmt.Errorf("decode answer payload: %w", err)
	}
	if payload.Answer == nil || payload.Score == nil {
		return qa.Answer{}, fmt.Errorf("answer payload missing answer or score")
	}
	score := *payload.Score
	if math.IsNaN(score) {
		score = 0
	}
	score = math.Max(0, math.Min(1, score))
	text := strings.TrimSpace(*payload.Answer)
	start, end := locate(passage, text)
	return qa.Answer{Text: text, Score: score, Start: start, End: end}, nil
}

var (
	_ summarizer.Capability = (*ChatGPTSummarizer)(nil)
	_ qa.Capability         = (*ChatGPTAnswerer)(nil)
)
