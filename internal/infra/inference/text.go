package inference

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now", "do", "does", "did", "what", "which",
		"who", "whom", "when", "where", "why", "how",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

func words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// contentWords drops stopwords unless nothing else remains.
func contentWords(text string) []string {
	all := words(text)
	out := make([]string, 0, len(all))
	for _, w := range all {
		if _, ok := stopwords[w]; ok {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// locate returns the rune span of needle inside haystack, or -1, -1.
func locate(haystack, needle string) (int, int) {
	if needle == "" {
		return -1, -1
	}
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		idx = strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
		if idx < 0 || len(strings.ToLower(haystack)) != len(haystack) {
			return -1, -1
		}
	}
	start := utf8.RuneCountInString(haystack[:idx])
	return start, start + utf8.RuneCountInString(needle)
}
