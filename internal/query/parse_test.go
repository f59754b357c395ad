package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gandalf/internal/ir"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Predicate
	}{
		{"int equals", "vlan == 10", Eq("vlan", ir.Int(10))},
		{"single equals", "vlan = 10", Eq("vlan", ir.Int(10))},
		{"no spaces", "vlan==10", Eq("vlan", ir.Int(10))},
		{"negative int", "offset == -5", Eq("offset", ir.Int(-5))},
		{"single quoted", "role == 'web'", Eq("role", ir.String("web"))},
		{"double quoted", `role == "web server"`, Eq("role", ir.String("web server"))},
		{"quoted number stays text", "vlan == '10'", Eq("vlan", ir.String("10"))},
		{"bare word", "role != db", Ne("role", ir.String("db"))},
		{"ip bare word", "ip == 10.0.0.1", Eq("ip", ir.String("10.0.0.1"))},
		{"mac bare word", "mac == aa:bb:cc:dd:ee:ff", Eq("mac", ir.String("aa:bb:cc:dd:ee:ff"))},
		{"bool", "dhcp == true", Eq("dhcp", ir.Bool(true))},
		{"null", "mac == NULL", Eq("mac", ir.Null{})},
		{"escaped quote", `name == "a\"b"`, Eq("name", ir.String(`a"b`))},
		{"hex escape", `name == "a\x41b"`, Eq("name", ir.String("aAb"))},
		{"unicode escape", `name == "caf\u00e9"`, Eq("name", ir.String("café"))},
		{"single quoted escape", `name == 'it\'s'`, Eq("name", ir.String("it's"))},
		{"match nothing", "false", Never{}},
		{"field named false", "false == 1", Eq("false", ir.Int(1))},
		{
			"and",
			"vlan == 10 and role == web",
			And{Left: Eq("vlan", ir.Int(10)), Right: Eq("role", ir.String("web"))},
		},
		{
			"and binds tighter than or",
			"a == 1 or b == 2 AND c == 3",
			Or{Left: Eq("a", ir.Int(1)), Right: And{Left: Eq("b", ir.Int(2)), Right: Eq("c", ir.Int(3))}},
		},
		{
			"parentheses",
			"(a == 1 || b == 2) && c == 3",
			And{Left: Or{Left: Eq("a", ir.Int(1)), Right: Eq("b", ir.Int(2))}, Right: Eq("c", ir.Int(3))},
		},
		{
			"not",
			"not role == web",
			Not{Inner: Eq("role", ir.String("web"))},
		},
		{
			"bang",
			"!(a == 1)",
			Not{Inner: Eq("a", ir.Int(1))},
		},
		{
			"left associative",
			"a == 1 and b == 2 and c == 3",
			And{Left: And{Left: Eq("a", ir.Int(1)), Right: Eq("b", ir.Int(2))}, Right: Eq("c", ir.Int(3))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("   ")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		msg  string
	}{
		{"missing operator", "vlan 10", "expected == or !="},
		{"missing value", "vlan ==", "expected value"},
		{"unbalanced paren", "(vlan == 10", "expected ')'"},
		{"trailing token", "vlan == 10 )", "unexpected"},
		{"dangling and", "vlan == 10 and", "unexpected end"},
		{"unterminated string", "role == 'web", "unterminated string"},
		{"unterminated after escape", `role == "web\"`, "unterminated string"},
		{"bad escape", `role == "w\qb"`, "invalid string literal"},
		{"bad character", "vlan == 10 ; drop", "unexpected character"},
		{"operator first", "== 10", "expected field name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Message, tt.msg)
			assert.Equal(t, tt.expr, perr.Expr)
		})
	}
}

func TestParse_RoundTripsString(t *testing.T) {
	preds := []Predicate{
		Eq("vlan", ir.Int(10)),
		Ne("role", ir.String("web server")),
		Eq("mac", ir.Null{}),
		And{Left: Eq("a", ir.Int(1)), Right: Or{Left: Eq("b", ir.Bool(false)), Right: Not{Inner: Eq("c", ir.String(`q"x`))}}},
		Eq("name", ir.String("a\x01b")),
		Eq("name", ir.String("tab\there")),
		Ne("owner", ir.String("José")),
		Or{Left: Never{}, Right: Eq("a", ir.Int(1))},
	}

	for _, p := range preds {
		t.Run(p.String(), func(t *testing.T) {
			back, err := Parse(p.String())
			require.NoError(t, err)
			assert.Equal(t, p, back)
		})
	}
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, Eq("a", ir.Int(1)), MustParse("a == 1"))
	assert.Panics(t, func() { MustParse("a ==") })
}
