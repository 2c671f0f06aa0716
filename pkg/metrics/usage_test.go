package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorderAccumulates(t *testing.T) {
	rec := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Add(TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5})
		}()
	}
	wg.Wait()

	snap := rec.Snapshot()
	require.Equal(t, int64(10), snap.Calls)
	require.Equal(t, TokenUsage{PromptTokens: 30, CompletionTokens: 20, TotalTokens: 50}, snap.Usage)
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	rec.Add(TokenUsage{TotalTokens: 1})
	require.True(t, rec.Snapshot().Usage.IsZero())
}
