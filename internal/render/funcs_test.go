package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gandalf/internal/records"
	"github.com/roach88/gandalf/internal/testutil"
	"github.com/roach88/gandalf/internal/tree"
	"github.com/roach88/gandalf/internal/version"
)

// execute renders src once against the shared inventory.
func execute(t *testing.T, src string) (string, error) {
	t.Helper()
	tmpl, err := Parse("test", src)
	require.NoError(t, err)

	r := New(Options{
		Store:  records.New(testutil.Inventory()),
		Vars:   map[string]any{"domain": "example.com", "vlans": []any{10, 20}, "zones": []string{"example.com", "example.org"}},
		Writer: tree.DirWriter{Root: t.TempDir()},
	})
	return r.Execute(tmpl, "test", version.FixedContext(7))
}

const names = `{{ range . }}{{ .Str "hostname" }} {{ end }}`

func TestFuncMap_Predicates(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"where", `{{ with .DB.Search (where "vlan == 10") }}` + names + `{{ end }}`, "ns1 web1 "},
		{"empty where is everything", `{{ with .DB.Search (where "") }}` + names + `{{ end }}`, "ns1 web1 db1 printer "},
		{"host field", `{{ with .DB.Search (.Host.Field "mac").Exists }}` + names + `{{ end }}`, "ns1 web1 db1 "},
		{"all", `{{ with .DB.Search (all (where "vlan == 10") (where "role == web")) }}` + names + `{{ end }}`, "web1 "},
		{"any", `{{ with .DB.Search (any (where "role == db") (where "role == dns")) }}` + names + `{{ end }}`, "ns1 db1 "},
		{"none", `{{ with .DB.Search (none (where "vlan == 10") (where "vlan == 20")) }}` + names + `{{ end }}`, "printer "},
		{"negate", `{{ with .DB.Search (negate (isSet "mac")) }}` + names + `{{ end }}`, "printer "},
		{"matches", `{{ with .DB.Search (matches "hostname" "^(web|db)") }}` + names + `{{ end }}`, "web1 db1 "},
		{"oneOf", `{{ with .DB.Search (oneOf "vlan" 20 30) }}` + names + `{{ end }}`, "db1 printer "},
		{"inSubnet", `{{ with .DB.Search (inSubnet "ip" "10.0.10.0/24") }}` + names + `{{ end }}`, "ns1 web1 "},
		{"field eq", `{{ with .DB.Search ((field "role").Eq "db") }}` + names + `{{ end }}`, "db1 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFuncMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"bad expression", `{{ where "vlan ==" }}`, "expected value"},
		{"all of nothing", `{{ all }}`, "no predicates given"},
		{"empty predicate in any", `{{ any (where "") }}`, "predicate 1 is empty"},
		{"bad subnet", `{{ inSubnet "ip" "10.0.0.0/40" }}`, "10.0.0.0/40"},
		{"bad regexp", `{{ matches "hostname" "(" }}`, "hostname"},
		{"unknown view", `{{ .View.Use "bind" }}`, `unknown view "bind"`},
		{"no default view", `{{ .View.Call (.DB.All) }}`, "no default view set"},
		{"missing var", `{{ .Var.nope }}`, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestFuncMap_TextHelpers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"join strings", `{{ join ", " .Var.zones }}`, "example.com, example.org"},
		{"join any", `{{ join "," .Var.vlans }}`, "10,20"},
		{"lower upper", `{{ upper .Var.domain }} {{ lower "NS1" }}`, "EXAMPLE.COM ns1"},
		{"reverse name", `{{ reverseName "10.0.10.2" }}`, "2.10.0.10.in-addr.arpa"},
		{"reverse zone", `{{ reverseZone "10.0.10.0/24" }}`, "10.0.10.in-addr.arpa"},
		{"version", `{{ .DNSVersion }}`, "7"},
		{"path", `{{ .Path }}`, "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
