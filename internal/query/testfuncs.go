package query

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/roach88/gandalf/internal/ir"
)

// ErrNotText is returned by text-based test functions given a non-text value.
var ErrNotText = errors.New("value is not text")

// IsSet reports whether a value is present, non-null and not the empty string.
func IsSet() TestFunc {
	return func(v ir.Value) (bool, error) {
		switch val := v.(type) {
		case ir.Null, nil:
			return false, nil
		case ir.String:
			return val != "", nil
		default:
			return true, nil
		}
	}
}

// OneOf matches values equal (by ir.Equal) to any of vs.
func OneOf(vs ...any) (TestFunc, error) {
	want := make([]ir.Value, 0, len(vs))
	for _, v := range vs {
		val, err := ir.FromGo(v)
		if err != nil {
			return nil, err
		}
		want = append(want, val)
	}
	return func(v ir.Value) (bool, error) {
		for _, w := range want {
			if ir.Equal(v, w) {
				return true, nil
			}
		}
		return false, nil
	}, nil
}

// MatchesRegexp matches text values against pattern. Ints and bools are
// matched on their textual form; Null is an error (and therefore false).
func MatchesRegexp(pattern string) (TestFunc, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return func(v ir.Value) (bool, error) {
		if _, isNull := v.(ir.Null); isNull || v == nil {
			return false, ErrNotText
		}
		return re.MatchString(ir.Text(v)), nil
	}, nil
}

// InSubnet matches string values holding an IP address inside prefix.
// Values that do not parse as an address yield an error (false).
func InSubnet(prefix string) (TestFunc, error) {
	pfx, err := netip.ParsePrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("invalid prefix %q: %w", prefix, err)
	}
	pfx = pfx.Masked()
	return func(v ir.Value) (bool, error) {
		s, ok := v.(ir.String)
		if !ok {
			return false, ErrNotText
		}
		addr, err := netip.ParseAddr(strings.TrimSpace(string(s)))
		if err != nil {
			return false, err
		}
		return pfx.Contains(addr), nil
	}, nil
}
