package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsInteroperate(t *testing.T) {
	type record struct {
		Keys []int64 `json:"keys"`
		Dead []bool  `json:"dead"`
	}
	in := record{Keys: []int64{1, 2, 3}, Dead: []bool{false, true, false}}

	b, err := JSON{}.Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, GoJSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
