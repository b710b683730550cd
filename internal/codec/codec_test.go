package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	fields := map[string]any{
		"title":    "Algebra",
		"theory":   "",
		"examples": "x + 1",
	}

	data, err := MarshalFields(fields)
	require.NoError(t, err)

	got, err := UnmarshalFields(data)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestFields_Deterministic(t *testing.T) {
	a, err := MarshalFields(map[string]any{"b": "2", "a": "1"})
	require.NoError(t, err)
	b, err := MarshalFields(map[string]any{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFields_Empty(t *testing.T) {
	data, err := MarshalFields(nil)
	require.NoError(t, err)

	got, err := UnmarshalFields(data)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = UnmarshalFields(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestFields_Nested(t *testing.T) {
	data, err := MarshalFields(map[string]any{"questions": map[string]any{"q1": "2+2"}})
	require.NoError(t, err)

	got, err := UnmarshalFields(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"q1": "2+2"}, got["questions"])
}

func TestFields_Corrupt(t *testing.T) {
	_, err := UnmarshalFields([]byte{0xff, 0x00})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBlob(t *testing.T) {
	fields := map[string]any{"q1": "What is 2+2?", "a1": "4"}

	blob, err := MarshalBlob(fields)
	require.NoError(t, err)

	got, err := UnmarshalBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, fields, got)

	_, err = UnmarshalBlob([]byte("not zstd"))
	assert.ErrorIs(t, err, ErrCorrupt)
}
