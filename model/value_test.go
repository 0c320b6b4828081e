package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_ParseRoundTrip(t *testing.T) {
	for _, kind := range []Kind{
		Int8, Int16, Int32, Int64,
		UInt8, UInt16, UInt32, UInt64,
		Float32, Float64, Bool, String,
	} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("Complex128")
	require.Error(t, err)
}

func TestKind_Size(t *testing.T) {
	assert.Equal(t, 1, Int8.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 0, String.Size())

	assert.True(t, Float32.IsFixed())
	assert.False(t, String.IsFixed())
	assert.True(t, Int32.IsIndex())
	assert.False(t, Int8.IsIndex())
}

func TestValue_Accessors(t *testing.T) {
	assert.Equal(t, int64(-7), IntValue(Int16, -7).Int())
	assert.Equal(t, uint64(300), UintValue(UInt16, 300).Uint())
	assert.Equal(t, 2.5, FloatValue(Float64, 2.5).Float())
	assert.True(t, BoolValue(true).Bool())
	assert.Equal(t, "gene", StringValue("gene").Str())
}

func TestValue_Convert(t *testing.T) {
	v, err := IntValue(Int64, 42).Convert(Float32)
	require.NoError(t, err)
	assert.Equal(t, Float32, v.Kind())
	assert.Equal(t, 42.0, v.Float())

	v, err = FloatValue(Float64, 1.0).Convert(Bool)
	require.NoError(t, err)
	assert.True(t, v.Bool())

	_, err = StringValue("x").Convert(Int64)
	require.Error(t, err)
	_, err = IntValue(Int64, 1).Convert(String)
	require.Error(t, err)
}

func TestValue_IsDefault(t *testing.T) {
	assert.True(t, IntValue(Int32, 0).IsDefault())
	assert.True(t, BoolValue(false).IsDefault())
	assert.True(t, StringValue("").IsDefault())
	assert.False(t, FloatValue(Float32, 0.5).IsDefault())
	assert.False(t, StringValue("a").IsDefault())

	for _, kind := range []Kind{Int8, UInt64, Float32, Bool, String} {
		assert.True(t, Zero(kind).IsDefault(), kind.String())
	}
}

func TestValue_FromAny(t *testing.T) {
	v, err := FromAny(int64(5))
	require.NoError(t, err)
	assert.Equal(t, Int64, v.Kind())

	v, err = FromAny("cell")
	require.NoError(t, err)
	assert.Equal(t, String, v.Kind())

	_, err = FromAny(struct{}{})
	require.Error(t, err)
}

func TestValue_JSONRoundTrip(t *testing.T) {
	tests := []Value{
		IntValue(Int32, -3),
		UintValue(UInt8, 9),
		FloatValue(Float64, 0.25),
		BoolValue(true),
		StringValue("human"),
	}
	for _, value := range tests {
		raw, err := value.MarshalJSON()
		require.NoError(t, err)

		var back Value
		require.NoError(t, back.UnmarshalJSON(raw))
		assert.Equal(t, value, back, value.String())
	}
}

func TestValue_JSONSidecarForm(t *testing.T) {
	raw, err := IntValue(Int64, 7).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Int64","value":7}`, string(raw))
}
