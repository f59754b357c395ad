package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHost() Record {
	return NewRecord(
		F("hostname", String("a")),
		F("ip", String("10.0.0.1")),
		F("vlan", Int(10)),
	)
}

func TestRecordPreservesOrder(t *testing.T) {
	r := sampleHost()

	assert.Equal(t, []string{"hostname", "ip", "vlan"}, r.Names())
	assert.Equal(t, 3, r.Len())

	fields := r.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "vlan", fields[2].Name)
	assert.Equal(t, Int(10), fields[2].Value)
}

func TestRecordGet(t *testing.T) {
	r := sampleHost()

	v, ok := r.Get("vlan")
	assert.True(t, ok)
	assert.Equal(t, Int(10), v)

	_, ok = r.Get("mac")
	assert.False(t, ok)

	assert.Equal(t, Null{}, r.Value("mac"), "absent field reads as Null")
	assert.Equal(t, "", r.Str("mac"))
	assert.Equal(t, "10", r.Str("vlan"))
	assert.True(t, r.Has("ip"))
	assert.False(t, r.Has("mac"))
}

func TestRecordDuplicateNameKeepsFirstPosition(t *testing.T) {
	r := NewRecord(F("a", Int(1)), F("b", Int(2)), F("a", Int(3)))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, Int(3), r.Value("a"))
}

func TestRecordNilValueBecomesNull(t *testing.T) {
	r := NewRecord(F("a", nil))

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, Null{}, v)
}

func TestRecordFieldsIsACopy(t *testing.T) {
	r := sampleHost()
	fields := r.Fields()
	fields[0].Value = String("mutated")

	assert.Equal(t, String("a"), r.Value("hostname"))

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, "hostname", r.Names()[0])
}

func TestRecordEqualIgnoresOrder(t *testing.T) {
	a := NewRecord(F("x", Int(1)), F("y", String("b")))
	b := NewRecord(F("y", String("b")), F("x", Int(1)))
	c := NewRecord(F("x", Int(1)), F("y", String("c")))
	d := NewRecord(F("x", Int(1)))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestRecordString(t *testing.T) {
	assert.Equal(t, "{hostname: a, ip: 10.0.0.1, vlan: 10}", sampleHost().String())
}

func TestRecordMap(t *testing.T) {
	m := sampleHost().Map()
	assert.Equal(t, map[string]any{
		"hostname": "a",
		"ip":       "10.0.0.1",
		"vlan":     int64(10),
	}, m)
}

func TestRecordJSONPreservesOrder(t *testing.T) {
	r := NewRecord(F("z", Int(1)), F("a", String("x")), F("m", Null{}))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"z", "a", "m"}, back.Names())
	assert.True(t, r.Equal(back))
}

func TestRecordUnmarshalRejectsFloats(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"a":1.5}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `record key "a"`)
}

func TestRecordUnmarshalRejectsNonObject(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`[1,2]`), &r)
	require.Error(t, err)
}
