package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is a version identifier embedded in a tracked file.
//
// Tokens are totally ordered by their integer value. The range is that of a
// DNS zone serial (32-bit unsigned).
type Token uint32

// String renders the token the way it is written into output files.
func (t Token) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// ParseToken parses the decimal form written by String.
func ParseToken(s string) (Token, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid version token %q: %w", s, err)
	}
	return Token(n), nil
}
