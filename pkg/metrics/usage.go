package metrics

import "sync/atomic"

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Recorder accumulates token usage across inference calls. Safe for concurrent use.
type Recorder struct {
	calls      atomic.Int64
	prompt     atomic.Int64
	completion atomic.Int64
	total      atomic.Int64
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add records one inference call.
func (r *Recorder) Add(u TokenUsage) {
	if r == nil {
		return
	}
	r.calls.Add(1)
	r.prompt.Add(int64(u.PromptTokens))
	r.completion.Add(int64(u.CompletionTokens))
	r.total.Add(int64(u.TotalTokens))
}

// UsageSnapshot is the serialized view of a Recorder.
type UsageSnapshot struct {
	Calls int64      `json:"calls"`
	Usage TokenUsage `json:"usage"`
}

// Snapshot returns the totals recorded so far.
func (r *Recorder) Snapshot() UsageSnapshot {
	if r == nil {
		return UsageSnapshot{}
	}
	return UsageSnapshot{
		Calls: r.calls.Load(),
		Usage: TokenUsage{
			PromptTokens:     int(r.prompt.Load()),
			CompletionTokens: int(r.completion.Load()),
			TotalTokens:      int(r.total.Load()),
		},
	}
}
