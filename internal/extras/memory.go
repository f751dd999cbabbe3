package extras

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mdconvert/markdown-convert/internal/dataset"
)

// Memory is the per-conversion state shared by all Extras of one Engine run.
// Resources are opened lazily on first use and released by Close. A Memory
// must not be reused across conversions.
type Memory struct {
	ctx      context.Context
	logger   *slog.Logger
	datasets *dataset.Store
	open     func(context.Context) (*dataset.Store, error)
	closed   bool

	// literals holds the regions stashed by the running Engine, so Extras
	// that read document structure can see the original text.
	literals Placeholders
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithMemoryLogger sets the logger Extras use for diagnostics.
func WithMemoryLogger(l *slog.Logger) MemoryOption {
	return func(m *Memory) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDatasetOpener overrides how the dataset store is opened.
func WithDatasetOpener(open func(context.Context) (*dataset.Store, error)) MemoryOption {
	return func(m *Memory) {
		m.open = open
	}
}

// NewMemory creates an empty Memory bound to ctx. ctx is used for lazily
// opened resources and the queries run against them.
func NewMemory(ctx context.Context, opts ...MemoryOption) *Memory {
	m := &Memory{
		ctx:    ctx,
		logger: slog.New(slog.DiscardHandler),
		open:   dataset.Open,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context returns the conversion context.
func (m *Memory) Context() context.Context {
	return m.ctx
}

// Logger returns the conversion logger.
func (m *Memory) Logger() *slog.Logger {
	return m.logger
}

// Datasets returns the conversion's dataset store, opening it on first use.
func (m *Memory) Datasets() (*dataset.Store, error) {
	if m.closed {
		return nil, dataset.ErrClosed
	}
	if m.datasets != nil {
		return m.datasets, nil
	}
	store, err := m.open(m.ctx)
	if err != nil {
		return nil, err
	}
	m.datasets = store
	return store, nil
}

// restoreLiterals substitutes stashed literal regions back into s.
func (m *Memory) restoreLiterals(s string) string {
	if len(m.literals) == 0 || !strings.Contains(s, tokenStart) {
		return s
	}
	pairs := make([]string, 0, 2*len(m.literals))
	for token, original := range m.literals {
		pairs = append(pairs, token, original)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// HasDatasets reports whether the dataset store has been opened.
func (m *Memory) HasDatasets() bool {
	return m.datasets != nil
}

// Close releases every resource opened during the conversion.
// Close is safe to call multiple times.
func (m *Memory) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.datasets != nil {
		if err := m.datasets.Close(); err != nil {
			errs = append(errs, err)
		}
		m.datasets = nil
	}
	return errors.Join(errs...)
}
