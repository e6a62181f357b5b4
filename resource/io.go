package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer so each write consumes throughput
// units from the controller.
type RateLimitedWriter struct {
	w   io.Writer
	c   *Controller
	ctx context.Context
}

// NewRateLimitedWriter creates a rate-limited writer. A nil controller makes
// it a pass-through.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, c *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{w: w, c: c, ctx: ctx}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.c.Acquire(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader so each read consumes throughput
// units from the controller.
type RateLimitedReader struct {
	r   io.Reader
	c   *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a rate-limited reader. A nil controller makes
// it a pass-through.
func NewRateLimitedReader(ctx context.Context, r io.Reader, c *Controller) *RateLimitedReader {
	return &RateLimitedReader{r: r, c: c, ctx: ctx}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if aerr := r.c.Acquire(r.ctx, n); aerr != nil {
			return n, aerr
		}
	}
	return n, err
}
