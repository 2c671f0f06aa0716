package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/docassist/internal/domain/segmenter"
	apperrors "github.com/yanqian/docassist/pkg/errors"
)

func chunksOf(texts ...string) []segmenter.Chunk {
	out := make([]segmenter.Chunk, len(texts))
	for i, text := range texts {
		out[i] = segmenter.Chunk{Index: i, Text: text}
	}
	return out
}

func TestRunSequentialPreservesOrder(t *testing.T) {
	var seen []int
	out, err := Run(context.Background(), chunksOf("a", "b", "c"), 1, func(_ context.Context, c segmenter.Chunk) (string, error) {
		seen = append(seen, c.Index)
		return strings.ToUpper(c.Text), nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, out)
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestRunSequentialStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	calls := 0
	_, err := Run(context.Background(), chunksOf("a", "b", "c"), 1, func(_ context.Context, c segmenter.Chunk) (string, error) {
		calls++
		if c.Index == 1 {
			return "", boom
		}
		return c.Text, nil
	})
	require.Error(t, err)
	require.Equal(t, 2, calls)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInference))
	require.ErrorIs(t, err, boom)
	idx, ok := FailedChunk(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.EqualError(t, err, "inference failed for chunk 1: model unavailable")
}

func TestRunEmpty(t *testing.T) {
	out, err := Run(context.Background(), nil, 4, func(context.Context, segmenter.Chunk) (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, chunksOf("a"), 1, func(context.Context, segmenter.Chunk) (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	idx, ok := FailedChunk(err)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestRunParallelKeepsChunkOrder(t *testing.T) {
	var inFlight, peak atomic.Int32
	out, err := Run(context.Background(), chunksOf("a", "b", "c", "d", "e"), 3, func(_ context.Context, c segmenter.Chunk) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// Later chunks finish first.
		time.Sleep(time.Duration(5-c.Index) * time.Millisecond)
		return c.Text + c.Text, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"aa", "bb", "cc", "dd", "ee"}, out)
	require.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunParallelReportsLowestFailingChunk(t *testing.T) {
	release := make(chan struct{})
	_, err := Run(context.Background(), chunksOf("a", "b", "c", "d"), 4, func(_ context.Context, c segmenter.Chunk) (string, error) {
		switch c.Index {
		case 3:
			// Fail first in wall-clock time.
			close(release)
			return "", errors.New("late chunk failed")
		case 1:
			<-release
			return "", errors.New("early chunk failed")
		default:
			<-release
			return c.Text, nil
		}
	})
	require.Error(t, err)
	idx, ok := FailedChunk(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Contains(t, err.Error(), "early chunk failed")
}

func TestJoinSummaries(t *testing.T) {
	require.Equal(t, "", JoinSummaries(nil))
	require.Equal(t, "HI THERE. BYE NOW.", JoinSummaries([]string{"HI THERE.", "BYE NOW."}))
}

func TestSelectBest(t *testing.T) {
	score := func(v float64) float64 { return v }
	tests := []struct {
		name   string
		items  []float64
		want   int
		wantOK bool
	}{
		{name: "empty", items: nil, want: -1, wantOK: false},
		{name: "single", items: []float64{0.2}, want: 0, wantOK: true},
		{name: "max wins", items: []float64{0.1, 0.9, 0.3}, want: 1, wantOK: true},
		{name: "tie keeps earliest", items: []float64{0.4, 0.7, 0.7}, want: 1, wantOK: true},
		{name: "all equal", items: []float64{0.5, 0.5, 0.5}, want: 0, wantOK: true},
		{name: "negative scores", items: []float64{-3, -1, -2}, want: 1, wantOK: true},
		{name: "nan ranks lowest", items: []float64{math.NaN(), 0.01}, want: 1, wantOK: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := SelectBest(tt.items, score)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
