// Package pipeline runs an inference capability over document chunks and
// aggregates the per-chunk results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/docassist/internal/domain/segmenter"
	apperrors "github.com/yanqian/docassist/pkg/errors"
)

// ChunkError carries the index of the chunk whose inference failed.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return e.Err.Error()
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// FailedChunk returns the chunk index recorded in err, if any.
func FailedChunk(err error) (int, bool) {
	var chunkErr *ChunkError
	if errors.As(err, &chunkErr) {
		return chunkErr.Index, true
	}
	return 0, false
}

// Func is invoked once per chunk.
type Func[T any] func(ctx context.Context, chunk segmenter.Chunk) (T, error)

// Run applies fn to every chunk and returns the results in chunk order.
//
// With concurrency <= 1 chunks are processed one after another and the run
// stops at the first failure. With higher concurrency at most that many calls
// are in flight; when several chunks fail, the failure with the lowest chunk
// index is reported so the outcome never depends on completion order.
func Run[T any](ctx context.Context, chunks []segmenter.Chunk, concurrency int, fn Func[T]) ([]T, error) {
	if concurrency <= 1 || len(chunks) <= 1 {
		return runSequential(ctx, chunks, fn)
	}
	return runParallel(ctx, chunks, concurrency, fn)
}

func runSequential[T any](ctx context.Context, chunks []segmenter.Chunk, fn Func[T]) ([]T, error) {
	out := make([]T, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, inferenceFailure(chunk.Index, err)
		}
		res, err := fn(ctx, chunk)
		if err != nil {
			return nil, inferenceFailure(chunk.Index, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func runParallel[T any](ctx context.Context, chunks []segmenter.Chunk, concurrency int, fn Func[T]) ([]T, error) {
	var (
		out    = make([]T, len(chunks))
		errs   = make([]error, len(chunks))
		failed atomic.Bool
		g      errgroup.Group
	)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		// Chunks not yet dispatched all sit after any failure already seen.
		if failed.Load() {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				failed.Store(true)
				return nil
			}
			res, err := fn(ctx, chunk)
			if err != nil {
				errs[i] = err
				failed.Store(true)
				return nil
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, inferenceFailure(chunks[i].Index, err)
		}
	}
	return out, nil
}

func inferenceFailure(index int, err error) error {
	return apperrors.Wrap(apperrors.CodeInference, fmt.Sprintf("inference failed for chunk %d", index), &ChunkError{Index: index, Err: err})
}
