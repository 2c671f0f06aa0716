package inference

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for token budgets.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts and truncates text in model tokens.
type Tokenizer interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// TiktokenTokenizer loads its encoding on first use and falls back to
// whitespace tokens when the encoding is unavailable.
type TiktokenTokenizer struct {
	encoding string
	logger   *slog.Logger

	once     sync.Once
	enc      *tiktoken.Tiktoken
	fallback WhitespaceTokenizer
}

// NewTiktokenTokenizer constructs a lazily loaded tokenizer.
func NewTiktokenTokenizer(encoding string, logger *slog.Logger) *TiktokenTokenizer {
	if strings.TrimSpace(encoding) == "" {
		encoding = DefaultEncoding
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TiktokenTokenizer{encoding: encoding, logger: logger.With("component", "inference.tokenizer")}
}

func (t *TiktokenTokenizer) load() *tiktoken.Tiktoken {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.logger.Warn("tiktoken encoding unavailable, using whitespace tokens", "encoding", t.encoding, "error", err)
			return
		}
		t.enc = enc
	})
	return t.enc
}

func (t *TiktokenTokenizer) Count(text string) int {
	enc := t.load()
	if enc == nil {
		return t.fallback.Count(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	enc := t.load()
	if enc == nil {
		return t.fallback.Truncate(text, maxTokens)
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

// WhitespaceTokenizer treats every whitespace separated field as one token.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (WhitespaceTokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) <= maxTokens {
		return text
	}
	return strings.Join(fields[:maxTokens], " ")
}

var (
	_ Tokenizer = (*TiktokenTokenizer)(nil)
	_ Tokenizer = WhitespaceTokenizer{}
)
