package version

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gandalf/internal/ir"
)

// Signature returns a content signature of already-masked text.
//
// Normalization before hashing:
//   - CRLF and lone CR line endings become LF
//   - Unicode is normalized to NFC
//   - trailing spaces and tabs are stripped from every line
//   - trailing blank lines are dropped
//
// Two texts with equal signatures are treated as the same content.
func Signature(masked string) string {
	return ir.HashWithDomain(ir.DomainSignature, []byte(Normalize(masked)))
}

// Normalize applies the signature normalization and returns the text.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = norm.NFC.String(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
