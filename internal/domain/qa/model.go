package qa

// Config configures chunking for the question-answering pipeline.
type Config struct {
	ChunkChars  int
	Concurrency int
}

// Answer is what the capability extracts from a single chunk.
// Start and End are rune offsets into the chunk, or -1 when unknown.
type Answer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Request carries a question and the document to search.
type Request struct {
	Question string `json:"question"`
	Text     string `json:"text"`
}

// Result is the best answer across every chunk of the document.
type Result struct {
	Answer
	ChunkIndex int   `json:"chunkIndex"`
	Chunks     int   `json:"chunks"`
	DurationMs int64 `json:"durationMs,omitempty"`
}
