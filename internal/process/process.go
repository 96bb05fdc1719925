// Package process fans per-document extraction out over a bounded pool of
// goroutines and concatenates the results.
//
// A batch either succeeds as a whole or fails: the first failing document
// aborts the batch, documents not yet started are skipped, and results from
// documents that already finished are discarded.
package process

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/bbref-data/internal/frame"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 6

// Func extracts one document into a frame. A nil frame contributes nothing.
type Func func(ctx context.Context, path string) (*frame.Frame, error)

// FileProcessingError names the document whose extraction failed.
type FileProcessingError struct {
	Filename string
	Err      error
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("An error occurred while processing file `%s`: %v.", e.Filename, e.Err)
}

func (e *FileProcessingError) Unwrap() error { return e.Err }

// Files runs fn over paths with at most workers concurrent calls and
// concatenates the frames in completion order.
func Files(ctx context.Context, paths []string, workers int, fn Func) (*frame.Frame, error) {
	frames, err := Each[*frame.Frame](ctx, paths, workers, fn)
	if err != nil {
		return nil, err
	}
	return frame.Concat(frames...), nil
}

// Each runs fn over paths with at most workers concurrent calls and returns
// the per-document values in completion order.
func Each[T any](ctx context.Context, paths []string, workers int, fn func(ctx context.Context, path string) (T, error)) ([]T, error) {
	if workers < 1 {
		workers = DefaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu      sync.Mutex
		results = make([]T, 0, len(paths))
	)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, path)
			if err != nil {
				return &FileProcessingError{Filename: filepath.Base(path), Err: err}
			}
			mu.Lock()
			results = append(results, v)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
