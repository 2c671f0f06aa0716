// Package segmenter splits long documents into ordered, budget-bounded chunks
// along sentence boundaries.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/yanqian/docassist/pkg/errors"
)

// Default character budgets per pipeline.
const (
	DefaultSummaryChunkChars = 1200
	DefaultAnswerChunkChars  = 2000
)

// boundary matches a sentence terminator and the whitespace run after it.
var boundary = regexp.MustCompile(`[.!?][\s\v\p{Z}\x{85}]+`)

// Chunk is a contiguous run of whole sentences from a document.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Segmenter is bound to a validated character budget.
type Segmenter struct {
	maxChars int
}

// New validates the budget and returns a Segmenter.
func New(maxChars int) (Segmenter, error) {
	if err := validateBudget(maxChars); err != nil {
		return Segmenter{}, err
	}
	return Segmenter{maxChars: maxChars}, nil
}

// MaxChars returns the configured budget.
func (s Segmenter) MaxChars() int {
	return s.maxChars
}

// Segment splits text using the bound budget. The joining space counts toward it.
func (s Segmenter) Segment(text string) []Chunk {
	return pack(Sentences(text), s.maxChars)
}

// Segment splits text into chunks of at most maxChars characters, counting the
// space that joins two sentences. A sentence longer than maxChars becomes its
// own chunk and is never cut.
func Segment(text string, maxChars int) ([]Chunk, error) {
	if err := validateBudget(maxChars); err != nil {
		return nil, err
	}
	return pack(Sentences(text), maxChars), nil
}

// Sentences returns the trimmed, non-empty sentences of text in order.
// Terminal punctuation stays attached to its sentence.
func Sentences(text string) []string {
	var (
		out   []string
		start int
	)
	for _, loc := range boundary.FindAllStringIndex(text, -1) {
		out = appendSentence(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return appendSentence(out, text[start:])
}

func appendSentence(out []string, raw string) []string {
	if s := strings.TrimSpace(raw); s != "" {
		return append(out, s)
	}
	return out
}

// pack greedily fills chunks. The separator space counts against the budget.
func pack(sentences []string, maxChars int) []Chunk {
	var (
		chunks     []Chunk
		current    strings.Builder
		currentLen int
	)
	flush := func() {
		if currentLen == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: strings.TrimSpace(current.String())})
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range sentences {
		n := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+1+n > maxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += n
	}
	flush()
	return chunks
}

func validateBudget(maxChars int) error {
	if maxChars <= 0 {
		return apperrors.Wrap(apperrors.CodeConfiguration, fmt.Sprintf("chunk budget must be positive, got %d", maxChars), nil)
	}
	return nil
}
