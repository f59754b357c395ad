package version

import "sync"

// RenderContext resolves the version token for one render pass of one file.
//
// The first ResolveVersion call runs the resolver; every later call returns
// the same token (or the same error). A context must not be reused across
// passes or files.
type RenderContext struct {
	once     sync.Once
	resolve  func() (Token, error)
	token    Token
	err      error
	mu       sync.Mutex
	requests int
}

// NewRenderContext creates a context that resolves lazily through resolve.
func NewRenderContext(resolve func() (Token, error)) *RenderContext {
	return &RenderContext{resolve: resolve}
}

// FixedContext creates a context that always resolves to tok.
func FixedContext(tok Token) *RenderContext {
	return NewRenderContext(func() (Token, error) { return tok, nil })
}

// ResolveVersion returns the token for this pass.
func (c *RenderContext) ResolveVersion() (Token, error) {
	c.mu.Lock()
	c.requests++
	c.mu.Unlock()

	c.once.Do(func() {
		c.token, c.err = c.resolve()
	})
	return c.token, c.err
}

// Requests reports how many times the template asked for the version.
func (c *RenderContext) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}
