package version

import (
	"context"
	"log/slog"
)

// Outcome is the terminal state of a tracked render.
type Outcome int

const (
	// Initial means no previous token was known and a fresh one was minted.
	Initial Outcome = iota
	// Unchanged means the content matched the previous output; the previous
	// token was kept.
	Unchanged
	// Changed means the content differed; a new token was minted and the
	// template rendered again with it.
	Changed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Initial:
		return "initial"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// RenderFunc renders a template once, resolving the version through rc.
type RenderFunc func(rc *RenderContext) (string, error)

// Result is the finalized output of a tracked file.
type Result struct {
	// Text is the final output.
	Text string

	// Token is the version embedded in Text.
	Token Token

	// Previous is the token extracted from the prior output, if any.
	Previous *Token

	Outcome Outcome
}

// Engine runs the two-pass versioning protocol.
//
// Engine is stateless between files and safe for concurrent use as long as
// its Minter, Format and Clock are.
type Engine struct {
	minter Minter
	format Format
	clock  Clock
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinter sets the minting policy (default DateSerial).
func WithMinter(m Minter) Option {
	return func(e *Engine) { e.minter = m }
}

// WithFormat sets the token format (default ZoneSerial).
func WithFormat(f Format) Option {
	return func(e *Engine) { e.format = f }
}

// WithClock sets the clock (default SystemClock).
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger (default discards).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		minter: DateSerial{},
		format: ZoneSerial{},
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// InitialContext returns a render context that mints an initial token on
// first use. Untracked files that still ask for a version render with it.
func (e *Engine) InitialContext() *RenderContext {
	today := e.clock.Now()
	return NewRenderContext(func() (Token, error) {
		return e.minter.Initial(today)
	})
}

// Render produces the final text and token for the tracked file at path.
//
// The provisional pass resolves the version to the previous token. If the
// masked signatures of the provisional output and the previous output match,
// the provisional output is final. Otherwise a new token is minted and the
// template is rendered a second time. With no previous token, the single
// pass runs with a freshly minted initial token.
//
// Render failures and minting overflow are returned as *Error and concern
// only this file.
func (e *Engine) Render(ctx context.Context, path string, render RenderFunc, prev Previous) (*Result, error) {
	today := e.clock.Now()
	logger := e.logger.With("path", path)

	var prevTok *Token
	if prev.Present {
		if tok, ok := e.format.Extract(prev.Text); ok {
			prevTok = &tok
		} else {
			logger.Warn("no serial found in previous output, minting a fresh serial")
		}
	}

	if prevTok == nil {
		rc := NewRenderContext(func() (Token, error) {
			return e.minter.Initial(today)
		})
		text, err := render(rc)
		if err != nil {
			return nil, e.renderError(path, "initial", rc, err)
		}
		tok, err := rc.ResolveVersion()
		if err != nil {
			return nil, withPath(err, path)
		}
		logger.Debug("serial minted", "serial", tok.String(), "outcome", Initial.String())
		return &Result{Text: text, Token: tok, Outcome: Initial}, nil
	}

	text, err := render(FixedContext(*prevTok))
	if err != nil {
		return nil, e.renderError(path, "provisional", nil, err)
	}

	if Signature(e.format.Mask(text)) == Signature(e.format.Mask(prev.Text)) {
		logger.Debug("content unchanged", "serial", prevTok.String())
		return &Result{Text: text, Token: *prevTok, Previous: prevTok, Outcome: Unchanged}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next, err := e.minter.Next(*prevTok, today)
	if err != nil {
		return nil, withPath(err, path)
	}

	final, err := render(FixedContext(next))
	if err != nil {
		return nil, e.renderError(path, "final", nil, err)
	}
	logger.Debug("content changed", "previous", prevTok.String(), "serial", next.String())
	return &Result{Text: final, Token: next, Previous: prevTok, Outcome: Changed}, nil
}

// renderError classifies a failed pass. A minting overflow raised through the
// template's version request is reported as such rather than as a render
// failure.
func (e *Engine) renderError(path, phase string, rc *RenderContext, err error) error {
	if IsOverflow(err) {
		return withPath(err, path)
	}
	if rc != nil && rc.Requests() > 0 {
		if _, rerr := rc.ResolveVersion(); rerr != nil {
			return withPath(rerr, path)
		}
	}
	return newRenderError(path, phase, err)
}
