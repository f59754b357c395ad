// Package view formats record lists into common configuration fragments:
// hosts files, DNS forward and reverse records, and DHCP host entries.
//
// Templates reach these through the ViewSet placed in the render namespace.
// A ViewSet also has a settable default view, so a template tree can pick
// one formatter up front and call it without naming it again.
package view

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/roach88/gandalf/internal/ir"
)

// ErrNoDefault is returned by Call before a default view is set.
var ErrNoDefault = errors.New("no default view set")

// Func is a view callable from a template.
type Func func(args ...any) (any, error)

// ViewSet holds the built-in formatters and the default view.
//
// A ViewSet belongs to one template render; it is not safe for concurrent use.
type ViewSet struct {
	def Func
}

// New returns a ViewSet with no default view.
func New() *ViewSet {
	return &ViewSet{}
}

// SetDefault installs fn as the default view.
func (v *ViewSet) SetDefault(fn Func) {
	v.def = fn
}

// Use selects a built-in view by name as the default: hosts, dns, rdns or
// dhcp. It returns an empty string so templates can call it inline.
func (v *ViewSet) Use(name string) (string, error) {
	fn, ok := v.builtin(name)
	if !ok {
		return "", fmt.Errorf("unknown view %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	v.def = fn
	return "", nil
}

// Call invokes the default view with args, passed through unchanged.
func (v *ViewSet) Call(args ...any) (any, error) {
	if v.def == nil {
		return nil, ErrNoDefault
	}
	return v.def(args...)
}

// Names lists the built-in views.
func Names() []string {
	return []string{"dhcp", "dns", "hosts", "rdns"}
}

func (v *ViewSet) builtin(name string) (Func, bool) {
	switch name {
	case "hosts":
		return func(args ...any) (any, error) {
			recs, _, err := recordArgs(args, 0)
			if err != nil {
				return nil, err
			}
			return v.Hosts(recs), nil
		}, true
	case "dns":
		return func(args ...any) (any, error) {
			recs, _, err := recordArgs(args, 0)
			if err != nil {
				return nil, err
			}
			return v.DNS(recs), nil
		}, true
	case "rdns":
		return func(args ...any) (any, error) {
			recs, rest, err := recordArgs(args, 2)
			if err != nil {
				return nil, err
			}
			return v.RDNS(recs, rest[0], rest[1])
		}, true
	case "dhcp":
		return func(args ...any) (any, error) {
			recs, _, err := recordArgs(args, 0)
			if err != nil {
				return nil, err
			}
			return v.DHCP(recs), nil
		}, true
	default:
		return nil, false
	}
}

// recordArgs unpacks ([]ir.Record, string...) view arguments.
func recordArgs(args []any, strs int) ([]ir.Record, []string, error) {
	if len(args) != strs+1 {
		return nil, nil, fmt.Errorf("view takes %d arguments, got %d", strs+1, len(args))
	}
	recs, ok := args[0].([]ir.Record)
	if !ok {
		return nil, nil, fmt.Errorf("view argument 1: want records, got %T", args[0])
	}
	rest := make([]string, 0, strs)
	for i, a := range args[1:] {
		s, ok := a.(string)
		if !ok {
			return nil, nil, fmt.Errorf("view argument %d: want string, got %T", i+2, a)
		}
		rest = append(rest, s)
	}
	return recs, rest, nil
}

// Hosts renders /etc/hosts lines ("ip<TAB>hostname") for records with an ip.
func (v *ViewSet) Hosts(recs []ir.Record) string {
	var b strings.Builder
	for _, r := range recs {
		ip, host := r.Str("ip"), r.Str("hostname")
		if ip == "" || host == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\t%s\n", ip, host)
	}
	return b.String()
}

// DNS renders zone-file A records for records with an ip.
func (v *ViewSet) DNS(recs []ir.Record) string {
	var b strings.Builder
	for _, r := range recs {
		ip, host := r.Str("ip"), r.Str("hostname")
		if ip == "" || host == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\tIN\tA\t%s\n", host, ip)
	}
	return b.String()
}

// RDNS renders PTR records for records whose address falls inside the
// reverse zone. Owner names are relative to zone; targets are
// "hostname.domain.". An empty zone emits absolute owner names.
func (v *ViewSet) RDNS(recs []ir.Record, zone, domain string) (string, error) {
	zone = strings.TrimSuffix(strings.ToLower(zone), ".")
	domain = strings.Trim(domain, ".")

	var b strings.Builder
	for _, r := range recs {
		ip, host := r.Str("ip"), r.Str("hostname")
		if ip == "" || host == "" {
			continue
		}
		name, err := ReverseName(ip)
		if err != nil {
			return "", fmt.Errorf("host %s: %w", host, err)
		}

		owner := name + "."
		if zone != "" {
			rel, ok := strings.CutSuffix(name, "."+zone)
			if !ok {
				continue
			}
			owner = rel
		}

		target := host
		if domain != "" {
			target += "." + domain
		}
		fmt.Fprintf(&b, "%s\tIN\tPTR\t%s.\n", owner, target)
	}
	return b.String(), nil
}

// DHCP renders ISC dhcpd host declarations for records with both a mac and
// an ip.
func (v *ViewSet) DHCP(recs []ir.Record) string {
	var b strings.Builder
	for _, r := range recs {
		ip, mac, host := r.Str("ip"), r.Str("mac"), r.Str("hostname")
		if ip == "" || mac == "" || host == "" {
			continue
		}
		fmt.Fprintf(&b, "host %s {\n\thardware ethernet %s;\n\tfixed-address %s;\n}\n", host, mac, ip)
	}
	return b.String()
}

// ReverseName returns the in-addr.arpa (or ip6.arpa) name of an address.
func ReverseName(ip string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", err
	}
	if addr.Is4() || addr.Is4In6() {
		b := addr.Unmap().As4()
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", b[3], b[2], b[1], b[0]), nil
	}
	b := addr.As16()
	labels := make([]string, 0, 32)
	for i := len(b) - 1; i >= 0; i-- {
		labels = append(labels, fmt.Sprintf("%x", b[i]&0x0f), fmt.Sprintf("%x", b[i]>>4))
	}
	return strings.Join(labels, ".") + ".ip6.arpa", nil
}

// ReverseZone returns the reverse zone name of an IPv4 prefix on an octet
// boundary, such as 10.0.10.0/24 → 10.0.10.in-addr.arpa.
func ReverseZone(prefix string) (string, error) {
	p, err := netip.ParsePrefix(strings.TrimSpace(prefix))
	if err != nil {
		return "", err
	}
	if !p.Addr().Is4() || p.Bits()%8 != 0 || p.Bits() == 0 {
		return "", fmt.Errorf("prefix %s is not an IPv4 octet boundary", prefix)
	}
	b := p.Masked().Addr().As4()
	octets := make([]string, 0, 4)
	for i := p.Bits()/8 - 1; i >= 0; i-- {
		octets = append(octets, fmt.Sprintf("%d", b[i]))
	}
	return strings.Join(octets, ".") + ".in-addr.arpa", nil
}
