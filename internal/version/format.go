package version

import (
	"regexp"
	"strconv"
)

// Format locates the token inside a tracked file's text.
type Format interface {
	// Extract returns the token embedded in text, if it can be located.
	Extract(text string) (Token, bool)

	// Mask replaces the token in text with a fixed placeholder.
	// Text without a locatable token is returned unchanged.
	Mask(text string) string
}

// SerialPlaceholder replaces the serial in masked zone text.
const SerialPlaceholder = "<serial>"

// soaSerial matches the first integer after "SOA <mname> <rname>", with an
// optional opening parenthesis and comment lines, across line breaks.
var soaSerial = regexp.MustCompile(`(?s)\bSOA\s+\S+\s+\S+\s*\(?(?:\s*;[^\n]*\n)*\s*(\d+)`)

// ZoneSerial reads the serial field of a zone file's SOA record.
type ZoneSerial struct{}

// Extract returns the SOA serial. Serials outside the 32-bit range are not
// valid and are reported as missing.
func (ZoneSerial) Extract(text string) (Token, bool) {
	m := soaSerial.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return Token(n), true
}

// Mask replaces the SOA serial with SerialPlaceholder.
func (ZoneSerial) Mask(text string) string {
	loc := soaSerial.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[2]] + SerialPlaceholder + text[loc[3]:]
}
