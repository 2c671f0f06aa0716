package segmenter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/docassist/pkg/errors"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "whitespace only", in: " \n\t ", want: nil},
		{name: "no terminator", in: "just words", want: []string{"just words"}},
		{name: "mixed terminators", in: "One. Two! Three? Four", want: []string{"One.", "Two!", "Three?", "Four"}},
		{name: "newlines and runs", in: "One.\n\nTwo.   Three.", want: []string{"One.", "Two.", "Three."}},
		{name: "abbreviation without space", in: "Version 1.2 shipped. Done.", want: []string{"Version 1.2 shipped.", "Done."}},
		{name: "trailing whitespace", in: "Only one.  ", want: []string{"Only one."}},
		{name: "leading whitespace", in: "   Lead. Follow.", want: []string{"Lead.", "Follow."}},
		{name: "non breaking space", in: "Alpha.\u00a0Beta.", want: []string{"Alpha.", "Beta."}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Sentences(tt.in))
		})
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{
			name:     "two chunks at ten chars",
			text:     "Hi there. Bye now.",
			maxChars: 10,
			want:     []string{"Hi there.", "Bye now."},
		},
		{
			name:     "single chunk under budget",
			text:     "The sky is blue. Water is wet. Fire is hot.",
			maxChars: DefaultAnswerChunkChars,
			want:     []string{"The sky is blue. Water is wet. Fire is hot."},
		},
		{
			name:     "one sentence per chunk",
			text:     "A. B. C.",
			maxChars: 2,
			want:     []string{"A.", "B.", "C."},
		},
		{
			name:     "exact fit includes separator",
			text:     "A. B. C.",
			maxChars: 5,
			want:     []string{"A. B.", "C."},
		},
		{
			name:     "separator pushes over budget",
			text:     "A. B.",
			maxChars: 4,
			want:     []string{"A.", "B."},
		},
		{
			name:     "joining space would reach eleven chars",
			text:     "Aaaa. Bbbb.",
			maxChars: 10,
			want:     []string{"Aaaa.", "Bbbb."},
		},
		{
			name:     "oversized sentence stands alone",
			text:     "Short. This sentence is far too long for the budget. End.",
			maxChars: 10,
			want:     []string{"Short.", "This sentence is far too long for the budget.", "End."},
		},
		{
			name:     "counts runes not bytes",
			text:     "Café ok. Über da.",
			maxChars: 17,
			want:     []string{"Café ok. Über da."},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunks, err := Segment(tt.text, tt.maxChars)
			require.NoError(t, err)
			got := make([]string, 0, len(chunks))
			for i, c := range chunks {
				require.Equal(t, i, c.Index)
				got = append(got, c.Text)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	for _, n := range []int{1, 10, DefaultSummaryChunkChars} {
		chunks, err := Segment("", n)
		require.NoError(t, err)
		require.Empty(t, chunks)
	}
}

func TestSegmentRejectsNonPositiveBudget(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Segment("Some text.", n)
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, apperrors.CodeConfiguration))

		_, err = New(n)
		require.True(t, apperrors.IsCode(err, apperrors.CodeConfiguration))
	}
}

func TestSegmentInvariants(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20) +
		"Is this a question? Yes! " +
		strings.Repeat("A much longer sentence that keeps going well past any small budget we might choose here. ", 3) +
		"Fin."
	sentences := Sentences(text)

	for _, budget := range []int{1, 5, 20, 45, 46, 100, 300, 5000} {
		chunks, err := Segment(text, budget)
		require.NoError(t, err)

		var rebuilt []string
		for _, c := range chunks {
			if c.Len() > budget {
				require.Len(t, Sentences(c.Text), 1, "over-budget chunk must hold one sentence (budget %d)", budget)
			}
			require.Equal(t, strings.TrimSpace(c.Text), c.Text)
			rebuilt = append(rebuilt, Sentences(c.Text)...)
		}
		require.Equal(t, sentences, rebuilt, "budget %d", budget)
	}
}

func TestSegmentDeterministic(t *testing.T) {
	text := "One. Two. Three. Four. Five."
	seg, err := New(9)
	require.NoError(t, err)
	require.Equal(t, 9, seg.MaxChars())

	first := seg.Segment(text)
	second := seg.Segment(text)
	require.Equal(t, first, second)
	require.Len(t, first, 4)
	require.Equal(t, "One. Two.", first[0].Text)
}

func TestChunkLen(t *testing.T) {
	c := Chunk{Text: "naïve"}
	require.Equal(t, 5, c.Len())
	require.Equal(t, utf8.RuneCountInString("naïve"), c.Len())
}
