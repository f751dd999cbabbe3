package extras

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// DefaultMaxIterations bounds the fixpoint loop of a single Extra.
const DefaultMaxIterations = 1000

// Engine applies an ordered set of Extras to HTML.
type Engine struct {
	pre           []Extra
	post          []Extra
	bypass        []string
	logger        *slog.Logger
	maxIterations int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for Extra-local failures.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxIterations sets the fixpoint iteration ceiling per Extra.
// Values below 1 keep the default.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// NewEngine creates an Engine for extras. The slice is copied and ordered by
// phase; Extras sharing a phase keep their registration order.
func NewEngine(extras []Extra, opts ...EngineOption) *Engine {
	ordered := slices.Clone(extras)
	slices.SortStableFunc(ordered, func(a, b Extra) int {
		return a.Phase - b.Phase
	})

	e := &Engine{
		logger:        slog.New(slog.DiscardHandler),
		maxIterations: DefaultMaxIterations,
	}
	for _, x := range ordered {
		if x.Pattern == nil || x.Replace == nil {
			continue
		}
		if x.preStash() {
			e.pre = append(e.pre, x)
		} else {
			e.post = append(e.post, x)
		}
		if x.BypassClass != "" && !slices.Contains(e.bypass, x.BypassClass) {
			e.bypass = append(e.bypass, x.BypassClass)
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Names returns the Extra names in execution order.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.pre)+len(e.post))
	for _, x := range e.pre {
		names = append(names, x.Name)
	}
	for _, x := range e.post {
		names = append(names, x.Name)
	}
	return names
}

// Apply runs the pre-stash Extras, stashes literal regions, runs the
// remaining Extras and restores the stashed regions. Extra-local failures are
// logged and never returned; the only error is context cancellation.
func (e *Engine) Apply(ctx context.Context, html string, mem *Memory) (string, error) {
	if mem == nil {
		mem = NewMemory(ctx, WithMemoryLogger(e.logger))
		defer mem.Close()
	}

	var err error
	if html, err = e.runGroup(ctx, e.pre, html, mem); err != nil {
		return "", err
	}

	protector := NewProtector(e.bypass)
	stashed, placeholders := protector.Stash(html)

	mem.literals = placeholders
	stashed, err = e.runGroup(ctx, e.post, stashed, mem)
	mem.literals = nil
	if err != nil {
		return "", err
	}

	restored, err := protector.Restore(stashed, placeholders)
	if err != nil {
		e.logger.Error("restoring literal regions", "err", err)
	}
	return restored, nil
}

// runGroup applies each Extra of group to fixpoint, in order.
func (e *Engine) runGroup(ctx context.Context, group []Extra, html string, mem *Memory) (string, error) {
	for _, x := range group {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		html = e.applyExtra(x, html, mem)
	}
	return html, nil
}

// applyExtra substitutes all matches of x until nothing matches or a pass
// changes nothing. An Extra that reaches the iteration ceiling is abandoned
// and html is returned as it was before x ran.
func (e *Engine) applyExtra(x Extra, html string, mem *Memory) string {
	original := html
	warned := make(map[string]bool)

	for i := 0; i < e.maxIterations; i++ {
		locs := x.Pattern.FindAllStringSubmatchIndex(html, -1)
		if len(locs) == 0 {
			return html
		}

		var b strings.Builder
		b.Grow(len(html))
		last := 0
		for _, loc := range locs {
			m := newMatch(x.Pattern, html, loc)
			res := e.call(x, m, html, mem)

			b.WriteString(html[last:loc[0]])
			if res.Keep {
				b.WriteString(m.Text)
				if res.Err != nil && !warned[m.Text] {
					warned[m.Text] = true
					e.logger.Warn("extra kept original text",
						"extra", x.Name,
						"match", abbreviate(m.Text),
						"err", res.Err,
					)
				}
			} else {
				b.WriteString(res.Text)
			}
			last = loc[1]
		}
		b.WriteString(html[last:])

		next := b.String()
		if next == html {
			return html
		}
		html = next
	}

	e.logger.Warn("extra abandoned",
		"extra", x.Name,
		"err", fmt.Errorf("%w (%d)", ErrIterationLimit, e.maxIterations),
	)
	return original
}

// call invokes the rewrite function, converting a panic into KeepOriginal.
func (e *Engine) call(x Extra, m Match, html string, mem *Memory) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = KeepOriginal(fmt.Errorf("%w: %v", ErrRewritePanic, r))
		}
	}()
	return x.Replace(m, html, mem)
}

// abbreviate shortens match text for log output.
func abbreviate(s string) string {
	const maxLen = 80
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
