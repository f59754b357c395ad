package render

import (
	"github.com/roach88/gandalf/internal/query"
	"github.com/roach88/gandalf/internal/records"
	"github.com/roach88/gandalf/internal/version"
	"github.com/roach88/gandalf/internal/view"
)

// Namespace is the dot value of a template execution.
type Namespace struct {
	DB   records.Store
	Host query.Root
	Var  map[string]any
	Path string
	View *view.ViewSet

	rc *version.RenderContext
}

// DNSVersion returns the version token of the file being rendered. Every
// call within one pass returns the same token.
func (n *Namespace) DNSVersion() (version.Token, error) {
	return n.rc.ResolveVersion()
}
