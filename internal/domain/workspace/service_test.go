package workspace_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/summarizer"
	"github.com/yanqian/docassist/internal/domain/workspace"
	"github.com/yanqian/docassist/internal/infra/querylog"
	"github.com/yanqian/docassist/internal/infra/reader"
	"github.com/yanqian/docassist/internal/infra/session"
	"github.com/yanqian/docassist/internal/infra/storage"
	apperrors "github.com/yanqian/docassist/pkg/errors"
)

type fixture struct {
	svc      *workspace.Service
	sessions *session.MemoryStore
	logs     *querylog.MemoryRepository
	storage  *storage.MemoryStorage
}

func newFixture(t *testing.T, answer qa.CapabilityFunc) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sum, err := summarizer.NewService(summarizer.Config{ChunkChars: 1200, Concurrency: 1}, summarizer.CapabilityFunc(func(_ context.Context, text string) (string, error) {
		return strings.ToUpper(text), nil
	}), logger)
	require.NoError(t, err)
	if answer == nil {
		answer = func(_ context.Context, _, passage string) (qa.Answer, error) {
			return qa.Answer{Text: passage, Score: 0.5, Start: 0, End: len([]rune(passage))}, nil
		}
	}
	ans, err := qa.NewService(qa.Config{ChunkChars: 2000, Concurrency: 1}, answer, logger)
	require.NoError(t, err)

	f := fixture{
		sessions: session.NewMemoryStore(0),
		logs:     querylog.NewMemoryRepository(),
		storage:  storage.NewMemoryStorage(),
	}
	f.svc = workspace.NewService(workspace.Config{MaxUploadBytes: 64}, sum, ans, f.sessions, f.logs, f.storage, reader.New(logger), logger)
	return f
}

func TestSummarizeText(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Summarize(ctx, workspace.SummarizeRequest{Text: "Hi there. Bye now."})
	require.NoError(t, err)
	require.Equal(t, "HI THERE. BYE NOW.", resp.Summary)
	require.Equal(t, 1, resp.Chunks)
	require.Equal(t, "Hi there. Bye now.", resp.Title)

	stored, err := f.svc.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	require.Equal(t, workspace.DocumentSourceText, stored.Source)
	require.Equal(t, "Hi there. Bye now.", stored.Original)
	require.Empty(t, stored.StorageKey)
}

func TestSummarizeUploadArchivesAndReads(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Summarize(ctx, workspace.SummarizeRequest{Upload: &workspace.Upload{
		Filename:    "my notes.txt",
		ContentType: "text/plain",
		Data:        []byte("Short note."),
	}})
	require.NoError(t, err)
	require.Equal(t, "SHORT NOTE.", resp.Summary)
	require.Equal(t, "my notes.txt", resp.Title)

	stored, err := f.svc.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	require.Equal(t, workspace.DocumentSourceUpload, stored.Source)
	require.Equal(t, "uploads/"+resp.SessionID.String()+"/my_notes.txt", stored.StorageKey)

	rc, err := f.storage.Get(ctx, stored.StorageKey)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "Short note.", string(data))
}

func TestSummarizePrefersPastedText(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := f.svc.Summarize(context.Background(), workspace.SummarizeRequest{
		Text:   "Pasted.",
		Upload: &workspace.Upload{Filename: "a.txt", Data: []byte("Uploaded.")},
	})
	require.NoError(t, err)
	require.Equal(t, "PASTED.", resp.Summary)
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		req  workspace.SummarizeRequest
		code string
	}{
		{name: "nothing", req: workspace.SummarizeRequest{Text: "   "}, code: apperrors.CodeInvalidInput},
		{name: "empty file", req: workspace.SummarizeRequest{Upload: &workspace.Upload{Filename: "a.txt"}}, code: apperrors.CodeInvalidInput},
		{name: "too large", req: workspace.SummarizeRequest{Upload: &workspace.Upload{Filename: "a.txt", Data: []byte(strings.Repeat("x", 65))}}, code: apperrors.CodeInvalidInput},
		{name: "whitespace file", req: workspace.SummarizeRequest{Upload: &workspace.Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("  \n ")}}, code: apperrors.CodeInvalidInput},
		{name: "undecodable", req: workspace.SummarizeRequest{Upload: &workspace.Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte{0xff, 0xfe}}}, code: apperrors.CodeDecoding},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.svc.Summarize(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestAskAgainstSessionRecordsQuery(t *testing.T) {
	f := newFixture(t, func(_ context.Context, question, passage string) (qa.Answer, error) {
		require.Equal(t, "Where is it?", question)
		idx := strings.Index(passage, "Paris")
		return qa.Answer{Text: "Paris", Score: 0.9, Start: idx, End: idx + 5}, nil
	})
	ctx := context.Background()

	summary, err := f.svc.Summarize(ctx, workspace.SummarizeRequest{Text: "The tower is in Paris."})
	require.NoError(t, err)

	id := summary.SessionID
	resp, err := f.svc.Ask(ctx, workspace.AskRequest{SessionID: &id, Question: "Where is it?"})
	require.NoError(t, err)
	require.Equal(t, "Paris", resp.Answer)
	require.InDelta(t, 0.9, resp.Score, 1e-9)
	require.Equal(t, 16, resp.Start)
	require.Equal(t, 0, resp.ChunkIndex)

	logs, err := f.svc.ListQueries(ctx, id)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "Where is it?", logs[0].Question)
	require.Equal(t, "Paris", logs[0].Answer)
}

func TestAskInlineText(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := f.svc.Ask(context.Background(), workspace.AskRequest{Text: "Only sentence.", Question: "What?"})
	require.NoError(t, err)
	require.Nil(t, resp.SessionID)
	require.Equal(t, "Only sentence.", resp.Answer)
	require.Equal(t, 1, resp.Chunks)
}

func TestAskErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	missing := uuid.New()
	_, err := f.svc.Ask(ctx, workspace.AskRequest{SessionID: &missing, Question: "q"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Ask(ctx, workspace.AskRequest{Question: "q"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNoContext))

	_, err = f.svc.Ask(ctx, workspace.AskRequest{Text: "Some text.", Question: " "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = f.svc.ListQueries(ctx, missing)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAskCapabilityFailure(t *testing.T) {
	f := newFixture(t, func(context.Context, string, string) (qa.Answer, error) {
		return qa.Answer{}, errors.New("model unavailable")
	})
	_, err := f.svc.Ask(context.Background(), workspace.AskRequest{Text: "Some text.", Question: "q"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInference))
}
