package mdconvert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mdconvert/markdown-convert/internal/fileutil"
)

// DefaultPollInterval is how often LiveConverter checks modification times.
const DefaultPollInterval = time.Second

// RenderFunc produces the output artifact once. It is called with a context
// that is never canceled, so a render in flight always completes.
type RenderFunc func(ctx context.Context) error

// State is the lifecycle state of a LiveConverter.
type State int

const (
	StateInitial State = iota
	StateRendering
	StateWatching
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateRendering:
		return "rendering"
	case StateWatching:
		return "watching"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// LiveConverter re-runs a render whenever the Markdown or CSS file changes.
// Changes are detected by polling modification times.
type LiveConverter struct {
	render   RenderFunc
	mdPath   string
	cssPath  string
	interval time.Duration
	stat     func(path string) (time.Time, error)
	logger   *slog.Logger
	onRender func(at time.Time)

	mu      sync.Mutex
	state   State
	mdSeen  time.Time
	cssSeen time.Time
}

// LiveOption configures a LiveConverter.
type LiveOption func(*LiveConverter)

// WithPollInterval sets the delay between modification checks.
// Non-positive values are ignored.
func WithPollInterval(d time.Duration) LiveOption {
	return func(l *LiveConverter) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithStat replaces the modification time lookup.
func WithStat(stat func(path string) (time.Time, error)) LiveOption {
	return func(l *LiveConverter) {
		if stat != nil {
			l.stat = stat
		}
	}
}

// WithLiveLogger sets the logger for render outcomes.
func WithLiveLogger(logger *slog.Logger) LiveOption {
	return func(l *LiveConverter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithOnRender registers fn, called after every successful render with its
// completion time.
func WithOnRender(fn func(at time.Time)) LiveOption {
	return func(l *LiveConverter) {
		l.onRender = fn
	}
}

// NewLiveConverter creates a LiveConverter watching mdPath and, unless it is
// empty, cssPath.
func NewLiveConverter(render RenderFunc, mdPath, cssPath string, opts ...LiveOption) *LiveConverter {
	l := &LiveConverter{
		render:   render,
		mdPath:   mdPath,
		cssPath:  cssPath,
		interval: DefaultPollInterval,
		stat:     fileutil.ModTime,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current lifecycle state.
func (l *LiveConverter) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *LiveConverter) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Run renders once, then polls until ctx is canceled. A failing first
// render is returned and no polling starts; later failures are logged and
// retried on the next change check. Cancellation returns nil.
func (l *LiveConverter) Run(ctx context.Context) error {
	if err := l.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.setState(StateStopped)
			return nil
		case <-ticker.C:
			if _, err := l.Poll(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("render failed", "markdown", l.mdPath, "err", err)
			}
		}
	}
}

// Start performs the initial, unconditional render. Modification times are
// read before rendering, so an edit made during the render triggers another
// one on the next Poll.
func (l *LiveConverter) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		l.setState(StateStopped)
		return err
	}

	md, css, err := l.observe()
	if err != nil {
		l.setState(StateStopped)
		return err
	}

	if err := l.renderOnce(ctx); err != nil {
		l.setState(StateStopped)
		return err
	}

	l.mu.Lock()
	l.mdSeen, l.cssSeen = md, css
	l.state = StateWatching
	l.mu.Unlock()
	return nil
}

// Poll performs one change check and renders if either file's modification
// time differs from the last successful render. It reports whether a render
// succeeded. After a failed render the recorded times are kept, so the next
// Poll retries.
func (l *LiveConverter) Poll(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		l.setState(StateStopped)
		return false, err
	}

	md, css, err := l.observe()
	if err != nil {
		l.logger.Warn("checking for changes", "err", err)
		return false, nil
	}

	l.mu.Lock()
	changed := !md.Equal(l.mdSeen) || !css.Equal(l.cssSeen)
	l.mu.Unlock()
	if !changed {
		return false, nil
	}

	if err := l.renderOnce(ctx); err != nil {
		l.setState(StateWatching)
		return false, err
	}

	l.mu.Lock()
	l.mdSeen, l.cssSeen = md, css
	l.state = StateWatching
	l.mu.Unlock()
	return true, nil
}

// observe reads both modification times. The CSS time is zero when no CSS
// file is watched.
func (l *LiveConverter) observe() (md, css time.Time, err error) {
	md, err = l.stat(l.mdPath)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stat %s: %w", l.mdPath, err)
	}
	if l.cssPath != "" {
		css, err = l.stat(l.cssPath)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("stat %s: %w", l.cssPath, err)
		}
	}
	return md, css, nil
}

// renderOnce runs the render detached from ctx cancellation.
func (l *LiveConverter) renderOnce(ctx context.Context) error {
	l.setState(StateRendering)
	start := time.Now()

	if err := l.render(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	done := time.Now()
	l.logger.Info("render", "markdown", l.mdPath, "duration", done.Sub(start))
	if l.onRender != nil {
		l.onRender(done)
	}
	return nil
}
