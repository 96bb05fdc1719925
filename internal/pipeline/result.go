package pipeline

import (
	"fmt"

	"github.com/albapepper/bbref-data/internal/collect"
)

// Result tracks counts and errors from one or more pipeline stages.
type Result struct {
	PagesFetched  int
	PagesSkipped  int
	PagesFailed   int
	TablesWritten int
	RowsWritten   int
	RowsLoaded    int64
	FilesUploaded int
	Errors        []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.PagesFetched += other.PagesFetched
	r.PagesSkipped += other.PagesSkipped
	r.PagesFailed += other.PagesFailed
	r.TablesWritten += other.TablesWritten
	r.RowsWritten += other.RowsWritten
	r.RowsLoaded += other.RowsLoaded
	r.FilesUploaded += other.FilesUploaded
	r.Errors = append(r.Errors, other.Errors...)
}

// AddCollect merges the outcome of a collection run.
func (r *Result) AddCollect(s collect.Stats) {
	r.PagesFetched += s.Fetched
	r.PagesSkipped += s.Skipped
	r.PagesFailed += s.Failed
	r.Errors = append(r.Errors, s.Errors...)
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"fetched=%d skipped=%d failed=%d tables=%d rows=%d loaded=%d uploaded=%d errors=%d",
		r.PagesFetched, r.PagesSkipped, r.PagesFailed,
		r.TablesWritten, r.RowsWritten, r.RowsLoaded,
		r.FilesUploaded, len(r.Errors),
	)
}
