// Package boundary supervises page rendering. A render that panics is
// replaced wholesale by a static fallback page and reported to a diagnostics
// collector. There is no retry: reloading the page is the only way out.
package boundary

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// FallbackText is the only content shown after a render failure.
const FallbackText = "Something went wrong. Please refresh the page."

const fallbackPage = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Error</title></head>
<body><main class="error-boundary"><h1>` + FallbackText + `</h1></main></body></html>
`

// Reporter receives render failures.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("render panic: %v", e.Value) }

// Boundary is the supervisor around page renders.
type Boundary struct {
	reporter Reporter
}

// New creates a boundary reporting to r.
func New(r Reporter) *Boundary {
	return &Boundary{reporter: r}
}

// Render runs fn against a buffer and copies the buffer to w only if fn
// completes. A panic in fn discards everything it wrote.
func (b *Boundary) Render(w http.ResponseWriter, r *http.Request, fn func(w http.ResponseWriter) error) {
	rec := newRecorder()
	err := b.run(func() error { return fn(rec) })
	if err != nil {
		b.fail(w, r, err)
		return
	}
	rec.flushTo(w)
}

// Middleware applies Render to a whole handler.
func (b *Boundary) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.Render(w, r, func(bw http.ResponseWriter) error {
			next.ServeHTTP(bw, r)
			return nil
		})
	})
}

func (b *Boundary) run(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func (b *Boundary) fail(w http.ResponseWriter, r *http.Request, err error) {
	if b.reporter != nil {
		b.reporter.Report(r.Context(), err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprint(w, fallbackPage)
}

// --------------------------------------------------------------------------
// Buffered response
// --------------------------------------------------------------------------

type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: http.Header{}}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = v
	}
	if r.status == 0 {
		r.status = http.StatusOK
	}
	w.WriteHeader(r.status)
	w.Write(r.body.Bytes())
}

// --------------------------------------------------------------------------
// Log reporter
// --------------------------------------------------------------------------

// LogReporter writes failures to a structured logger.
type LogReporter struct {
	Logger *slog.Logger
}

func (l LogReporter) Report(ctx context.Context, err error) {
	attrs := []any{"error", err}
	if pe, ok := err.(*PanicError); ok {
		attrs = append(attrs, "stack", string(pe.Stack))
	}
	l.Logger.ErrorContext(ctx, "Render failed", attrs...)
}
