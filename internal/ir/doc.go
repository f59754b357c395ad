// Package ir provides the record model shared by every other gandalf package.
//
// This package contains value and record types only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float values - integers are int64, everything else is text or bool
//   - Records are immutable once constructed and keep input column order
//   - Equality never fails: a type mismatch is simply "not equal"
package ir
