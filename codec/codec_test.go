package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Format string `json:"format"`
	Eltype string `json:"eltype,omitempty"`
}

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("yaml")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			in := payload{Format: "sparse", Eltype: "Float32"}
			b, err := c.Marshal(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestOmitEmpty(t *testing.T) {
	b, err := Default.Marshal(payload{Format: "dense"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"dense"}`, string(b))
}

func TestMustMarshal(t *testing.T) {
	b := MustMarshal(nil, map[string]int{"version": 1})
	assert.JSONEq(t, `{"version":1}`, string(b))

	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
