package eventstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/stats"
	"github.com/mrzor/tracelog/internal/tracelog"
)

// StdinSource names standard input in a source list.
const StdinSource = "-"

// Result is one decoded and analyzed trace.
type Result struct {
	Source   string
	TraceLog *tracelog.TraceLog
	Info     *analyze.Info
}

// ResultHandler receives analyzed traces.
type ResultHandler interface {
	HandleResult(ctx context.Context, result Result) error
}

// ResultHandlerFunc adapts a function to ResultHandler.
type ResultHandlerFunc func(ctx context.Context, result Result) error

// HandleResult calls f.
func (f ResultHandlerFunc) HandleResult(ctx context.Context, result Result) error {
	return f(ctx, result)
}

// Stream loads and analyzes trace files concurrently and hands the results
// to a handler.
type Stream struct {
	handler    ResultHandler
	jobs       int
	decodeOpts []tracelog.Option
	statsOpts  []stats.Option
	stdin      io.Reader
}

// Option configures a Stream.
type Option func(*Stream)

// WithJobs bounds the number of traces processed at once. Values below 1
// mean 1.
func WithJobs(n int) Option {
	return func(s *Stream) {
		s.jobs = max(n, 1)
	}
}

// WithDecodeOptions sets the options passed to the decoder.
func WithDecodeOptions(opts ...tracelog.Option) Option {
	return func(s *Stream) {
		s.decodeOpts = opts
	}
}

// WithStatsOptions sets the options passed to the statistics aggregator.
func WithStatsOptions(opts ...stats.Option) Option {
	return func(s *Stream) {
		s.statsOpts = opts
	}
}

// WithStdin sets the reader used for the StdinSource.
func WithStdin(r io.Reader) Option {
	return func(s *Stream) {
		s.stdin = r
	}
}

// New creates a new Stream dispatching to handler.
func New(handler ResultHandler, opts ...Option) *Stream {
	s := &Stream{
		handler: handler,
		jobs:    1,
		stdin:   os.Stdin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes sources. Decoding and analysis run concurrently; the
// handler is then called once per source, in the order given, from the
// calling goroutine.
//
// The first failure cancels the remaining work and is returned, wrapped
// with its source. Nothing is handed to the handler in that case.
//
// Standard input is read once, before any decoding starts, so StdinSource
// may appear several times in sources.
func (s *Stream) Run(ctx context.Context, sources []string) error {
	results := make([]Result, len(sources))

	var stdin []byte
	if slices.Contains(sources, StdinSource) {
		content, err := io.ReadAll(s.stdin)
		if err != nil {
			return fmt.Errorf("%s: reading trace log: %w", StdinSource, err)
		}
		stdin = content
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.process(source, stdin)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.handler.HandleResult(ctx, result); err != nil {
			return fmt.Errorf("handling %s: %w", result.Source, err)
		}
	}
	return nil
}

func (s *Stream) process(source string, stdin []byte) (Result, error) {
	tl, err := s.load(source, stdin)
	if err != nil {
		return Result{}, err
	}

	info, err := analyze.Analyze(tl.Events, s.statsOpts...)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("analyzed trace",
		"source", source,
		"events", len(tl.Events),
		"tasks", info.Tasks.Len(),
		"executions", info.Executions.Count(),
	)
	return Result{Source: source, TraceLog: tl, Info: info}, nil
}

func (s *Stream) load(source string, stdin []byte) (*tracelog.TraceLog, error) {
	if source == StdinSource {
		return tracelog.LoadBytes(stdin, s.decodeOpts...)
	}

	content, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading trace log: %w", err)
	}
	return tracelog.LoadBytes(content, s.decodeOpts...)
}
