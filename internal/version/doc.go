// Package version keeps the serial embedded in version-tracked output files
// stable across runs unless the file's content actually changed.
//
// ARCHITECTURE:
//
// Each tracked file goes through a two-pass protocol driven by Engine.Render:
//
//	Init ──→ Extract ──→ Provisional render ──→ Compare ──┬─→ Unchanged (previous token)
//	  │          │        (token = previous)              └─→ Changed (mint, re-render)
//	  └──────────┴─→ no previous token ──→ single render with a fresh initial token
//
// The token is resolved through a RenderContext, one per render pass. A
// template may ask for the version any number of times and always sees the
// same value within a pass.
//
// The change decision compares signatures of the provisional output and the
// previous file, both with the serial masked out by the file Format, so the
// serial itself never makes a file look changed.
//
// MINTING:
//
// Token minting is pluggable through the Minter interface. DateSerial mints
// YYYYMMDDnn zone serials; Counter mints a plain increasing integer.
package version
