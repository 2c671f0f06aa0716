package summarizer

// Config configures chunking for the summarization pipeline.
type Config struct {
	ChunkChars  int
	Concurrency int
}

// Request represents the incoming summarization payload.
type Request struct {
	Text string `json:"text"`
}

// Response is the aggregated summary of every chunk.
type Response struct {
	Summary    string `json:"summary"`
	Chunks     int    `json:"chunks"`
	DurationMs int64  `json:"durationMs,omitempty"`
}
