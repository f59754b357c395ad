package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalValue(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(9223372036854775807), "9223372036854775807"},
		{"bool true", Bool(true), "true"},
		{"null", Null{}, "null"},
		{"no html escaping", String("<a&b>"), `"<a&b>"`},
		{"quote and backslash", String(`a"b\c`), `"a\"b\\c"`},
		{"control characters", String("a\nb\x01"), `"a\nb\u0001"`},
		{"line separator kept literal", String("a\u2028b"), "\"a\u2028b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonicalValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	r := NewRecord(
		F("zebra", Int(1)),
		F("alpha", Int(2)),
		F("beta", Int(3)),
	)

	result, err := MarshalCanonical(r)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalEmptyRecord(t *testing.T) {
	result, err := MarshalCanonical(NewRecord())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "é" as e + combining acute (NFD) must serialize like the precomposed form.
	decomposed := NewRecord(F("name", String("e\u0301")))
	composed := NewRecord(F("name", String("\u00e9")))

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)

	assert.Equal(t, string(b), string(a))
}

func TestSortedKeysRFC8785Order(t *testing.T) {
	keys := SortedKeys([]string{"a", "A", "aa", "aA", "Aa", "AA"})
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, keys)
}

func TestSortedKeysUTF16Surrogates(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 even though UTF-8 byte order says otherwise.
	keys := SortedKeys([]string{"｡", "\U0001F600"})
	assert.Equal(t, []string{"\U0001F600", "｡"}, keys)
}

func TestSortedKeysDoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	_ = SortedKeys(in)
	assert.Equal(t, []string{"b", "a"}, in)
}
