package reader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/htmlindex"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
	apperrors "github.com/yanqian/docassist/pkg/errors"
)

const (
	mimePDF   = "application/pdf"
	mimePlain = "text/plain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader extracts text from plain text and PDF uploads.
type Reader struct {
	logger *slog.Logger
}

// New constructs a Reader.
func New(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{logger: logger.With("component", "reader")}
}

// Read returns the upload's text content.
func (r *Reader) Read(ctx context.Context, upload domain.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mediaType, params := resolveContentType(upload)
	switch {
	case mediaType == mimePDF:
		text, err := r.extractPDF(upload.Data)
		if err != nil {
			r.logger.Warn("pdf extraction failed", "filename", upload.Filename, "error", err)
			return "", apperrors.Wrap(apperrors.CodeDecoding, "failed to read PDF document", err)
		}
		return text, nil
	case strings.HasPrefix(mediaType, "text/"):
		text, err := decodeText(upload.Data, params["charset"])
		if err != nil {
			r.logger.Warn("text decoding failed", "filename", upload.Filename, "charset", params["charset"], "error", err)
			return "", apperrors.Wrap(apperrors.CodeDecoding, "failed to decode text document", err)
		}
		return text, nil
	default:
		return "", apperrors.Wrap(apperrors.CodeDecoding, fmt.Sprintf("unsupported content type %q", mediaType), nil)
	}
}

// resolveContentType prefers the declared type, then the extension, then sniffing.
func resolveContentType(upload domain.Upload) (string, map[string]string) {
	declared := strings.TrimSpace(upload.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		if mediaType, params, err := mime.ParseMediaType(declared); err == nil {
			return mediaType, params
		}
	}
	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".pdf":
		return mimePDF, map[string]string{}
	case ".txt", ".text", ".md":
		return mimePlain, map[string]string{}
	}
	mediaType, params, err := mime.ParseMediaType(http.DetectContentType(upload.Data))
	if err != nil {
		return "application/octet-stream", map[string]string{}
	}
	return mediaType, params
}

func decodeText(data []byte, charset string) (string, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8 byte sequence")
		}
		return string(data), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(bytes.TrimPrefix(decoded, utf8BOM)), nil
}

func (r *Reader) extractPDF(data []byte) (text string, err error) {
	// the parser panics on some malformed object streams
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	pages := pageTexts(doc.NumPage(), func(i int) (string, error) {
		page := doc.Page(i)
		if page.V.IsNull() {
			return "", nil
		}
		return page.GetPlainText(nil)
	}, func(i int, err error) {
		r.logger.Warn("skipping unreadable pdf page", "page", i, "error", err)
	})
	return joinPages(pages), nil
}

// pageTexts reads pages 1..n in order. Pages that fail to read are reported
// through skip and left out.
func pageTexts(n int, read func(page int) (string, error), skip func(page int, err error)) []string {
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		content, err := read(i)
		if err != nil {
			skip(i, err)
			continue
		}
		pages = append(pages, content)
	}
	return pages
}

// joinPages drops pages without text and separates the rest by newlines.
func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n")
}

var _ domain.DocumentReader = (*Reader)(nil)
