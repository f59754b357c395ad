package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gandalf/internal/ir"
)

func TestDefaultSchema_Kinds(t *testing.T) {
	s := mustDefaultSchema(t)

	assert.Equal(t, KindInt, s.Kind("vlan"))
	assert.Equal(t, KindBool, s.Kind("dhcp"))
	assert.Equal(t, KindString, s.Kind("hostname"))
	assert.Equal(t, KindString, s.Kind("ip"))
	assert.Equal(t, KindString, s.Kind("location"), "unknown columns are text")

	assert.True(t, s.Lowercase("mac"))
	assert.False(t, s.Lowercase("hostname"))
}

func TestLoadSchema_Custom(t *testing.T) {
	src := `
#Record: {
	name:  string
	port:  int & >=1 & <=65535
	tls?:  bool
}
`
	path := filepath.Join(t.TempDir(), "services.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	s, err := LoadSchema(path)
	require.NoError(t, err)

	records, err := Read(strings.NewReader("name,port,tls\nhttps,443,true\n"), s)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ir.Int(443), records[0].Value("port"))
	assert.Equal(t, ir.Bool(true), records[0].Value("tls"))

	// closed definition rejects unknown columns
	_, err = Read(strings.NewReader("name,port,owner\nssh,22,ops\n"), s)
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Row)
}

func TestLoadSchema_Empty(t *testing.T) {
	s, err := LoadSchema("")
	require.NoError(t, err)
	assert.Equal(t, KindInt, s.Kind("vlan"))
}

func TestParseSchema_Errors(t *testing.T) {
	_, err := ParseSchema("broken.cue", []byte("#Record: {"))
	var se *SchemaError
	require.ErrorAs(t, err, &se)

	_, err = ParseSchema("nodef.cue", []byte("record: {name: string}"))
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "no #Record")
}

func TestLoadSchema_Missing(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}
