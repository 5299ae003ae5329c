package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSortsKeysAtEveryLevel(t *testing.T) {
	v := map[string]any{
		"entries": map[string]any{
			"hello.txt": map[string]any{
				"type": "blob",
				"id":   "0ebdc",
			},
		},
	}
	b, err := Canonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"entries":{"hello.txt":{"id":"0ebdc","type":"blob"}}}`, string(b))
}

func TestCanonicalIsDeterministicAcrossMapIteration(t *testing.T) {
	v := map[string]any{
		"b": 1,
		"a": 2,
		"c": 3,
	}
	var first string
	for i := 0; i < 10; i++ {
		b, err := Canonical(v)
		require.NoError(t, err)
		if i == 0 {
			first = string(b)
		} else {
			assert.Equal(t, first, string(b))
		}
	}
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, first)
}

func TestCanonicalEscapesControlCharacters(t *testing.T) {
	b, err := Canonical("line\nbreak")
	require.NoError(t, err)
	assert.Equal(t, `"line\nbreak"`, string(b))
}
