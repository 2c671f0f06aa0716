package inference

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/segmenter"
	"github.com/yanqian/docassist/internal/domain/summarizer"
)

// FrequencySummarizer is an extractive summarizer that ranks sentences by
// normalized word frequency. MinLength and MaxLength are counted in words.
type FrequencySummarizer struct {
	minLength int
	maxLength int
}

// NewFrequencySummarizer constructs the summarizer.
func NewFrequencySummarizer(minLength, maxLength int) *FrequencySummarizer {
	return &FrequencySummarizer{minLength: minLength, maxLength: maxLength}
}

func (s *FrequencySummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sentences := segmenter.Sentences(text)
	if len(sentences) == 0 {
		return s.clip(strings.TrimSpace(text)), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, w := range contentWords(sent) {
			freq[w]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		tokens := contentWords(sent)
		total := 0.0
		for _, w := range tokens {
			if maxF > 0 {
				total += freq[w] / maxF
			}
		}
		if len(tokens) > 0 {
			total /= math.Sqrt(float64(len(tokens)))
		}
		scores[i] = ranked{idx: i, score: total}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	var selected []int
	count := 0
	for _, r := range scores {
		n := len(strings.Fields(sentences[r.idx]))
		if count > 0 && s.maxLength > 0 && count+n > s.maxLength {
			continue
		}
		selected = append(selected, r.idx)
		count += n
		if count >= s.minLength {
			break
		}
	}
	sort.Ints(selected)

	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return s.clip(strings.Join(out, " ")), nil
}

func (s *FrequencySummarizer) clip(text string) string {
	if s.maxLength <= 0 {
		return text
	}
	return WhitespaceTokenizer{}.Truncate(text, s.maxLength)
}

// LexicalAnswerer returns the sentence sharing the most terms with the question.
type LexicalAnswerer struct{}

func (LexicalAnswerer) Answer(ctx context.Context, question, passage string) (qa.Answer, error) {
	if err := ctx.Err(); err != nil {
		return qa.Answer{}, err
	}
	terms := map[string]struct{}{}
	for _, w := range contentWords(question) {
		terms[w] = struct{}{}
	}
	if len(terms) == 0 {
		return qa.Answer{Start: -1, End: -1}, nil
	}

	best, bestScore := "", 0.0
	for _, sent := range segmenter.Sentences(passage) {
		seen := map[string]struct{}{}
		for _, w := range words(sent) {
			if _, ok := terms[w]; ok {
				seen[w] = struct{}{}
			}
		}
		score := float64(len(seen)) / float64(len(terms))
		if score > bestScore {
			best, bestScore = sent, score
		}
	}
	if best == "" {
		return qa.Answer{Start: -1, End: -1}, nil
	}
	start, end := locate(passage, best)
	return qa.Answer{Text: best, Score: bestScore, Start: start, End: end}, nil
}

var (
	_ summarizer.Capability = (*FrequencySummarizer)(nil)
	_ qa.Capability         = LexicalAnswerer{}
)
