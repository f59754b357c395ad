// Package render drives template rendering over the record store.
//
// ARCHITECTURE:
//
//	[tree.Plan] → Renderer.RenderAll → per file:
//	    read → parse (text/template) → tracked? ─ no ──→ single pass ──────────┐
//	                                             └ yes → version.Engine.Render ┴→ tree.Writer
//
// Every pass executes the template against a fresh Namespace, so the
// version token and the default view never leak between files. Failures are
// collected per file in a Report; one broken template never stops its
// siblings.
//
// TEMPLATE NAMESPACE:
//
//	.DB          the record store (Search, All, Len)
//	.Host        the symbolic current record; .Host.Field "vlan" builds predicates
//	.Var         auxiliary variables from the --var file
//	.Path        the output path being rendered, relative to the output root
//	.View        view helpers (Hosts, DNS, RDNS, DHCP, Use, Call)
//	.DNSVersion  the version token of this file
//
// See FuncMap for the template functions.
package render
