package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
	apperrors "github.com/yanqian/docassist/pkg/errors"
)

func newTestPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		if text != "" {
			doc.Cell(40, 10, text)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestReadPlainText(t *testing.T) {
	r := New(nil)
	tests := []struct {
		name   string
		upload domain.Upload
		want   string
	}{
		{
			name:   "utf8 declared",
			upload: domain.Upload{Filename: "a.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("héllo world")},
			want:   "héllo world",
		},
		{
			name:   "bom stripped",
			upload: domain.Upload{Filename: "a.txt", ContentType: "text/plain", Data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...)},
			want:   "hi",
		},
		{
			name:   "latin1",
			upload: domain.Upload{Filename: "a.txt", ContentType: "text/plain; charset=iso-8859-1", Data: []byte{'c', 'a', 'f', 0xE9}},
			want:   "café",
		},
		{
			name:   "extension fallback",
			upload: domain.Upload{Filename: "notes.TXT", Data: []byte("plain notes")},
			want:   "plain notes",
		},
		{
			name:   "sniffed",
			upload: domain.Upload{Filename: "noext", Data: []byte("Just some text.")},
			want:   "Just some text.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Read(context.Background(), tc.upload)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestReadDecodingErrors(t *testing.T) {
	r := New(nil)
	tests := []struct {
		name   string
		upload domain.Upload
	}{
		{"invalid utf8", domain.Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte{0xff, 0xfe, 0xfd}}},
		{"unknown charset", domain.Upload{Filename: "a.txt", ContentType: "text/plain; charset=klingon", Data: []byte("x")}},
		{"garbage pdf", domain.Upload{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("not a pdf at all")}},
		{"unsupported", domain.Upload{Filename: "a.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Read(context.Background(), tc.upload)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeDecoding))
		})
	}
}

func TestReadPDF(t *testing.T) {
	data := newTestPDF(t, "Hello World", "", "Second page")
	got, err := New(nil).Read(context.Background(), domain.Upload{Filename: "doc.pdf", Data: data})
	require.NoError(t, err)
	first := strings.Index(got, "Hello World")
	second := strings.Index(got, "Second page")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	require.NotContains(t, got, "\n\n")
	require.False(t, strings.HasPrefix(got, "\n"))
	require.False(t, strings.HasSuffix(got, "\n"))
	between := got[first+len("Hello World") : second]
	require.Equal(t, 1, strings.Count(between, "\n"))
}

func TestPageTextsSkipsUnreadablePages(t *testing.T) {
	var skipped []int
	pages := pageTexts(4, func(page int) (string, error) {
		switch page {
		case 2:
			return "", errors.New("bad content stream")
		case 3:
			return "", nil
		}
		return fmt.Sprintf("page %d", page), nil
	}, func(page int, _ error) {
		skipped = append(skipped, page)
	})
	require.Equal(t, []int{2}, skipped)
	require.Equal(t, "page 1\npage 4", joinPages(pages))
}

func TestJoinPages(t *testing.T) {
	require.Equal(t, "a\nb", joinPages([]string{"a", "", "  ", "b"}))
	require.Equal(t, "", joinPages(nil))
}

func TestReadHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Read(ctx, domain.Upload{Filename: "a.txt", Data: []byte("x")})
	require.ErrorIs(t, err, context.Canceled)
}
