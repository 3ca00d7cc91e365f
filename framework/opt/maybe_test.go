package opt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneAndSome(t *testing.T) {
	assert.False(t, None[string]().IsDefined())
	assert.Equal(t, 0, None[int]().Value())
	assert.Nil(t, None[*string]().Value())

	assert.True(t, Some("").IsDefined())
	assert.Equal(t, "x", Some("x").Value())
}

func TestOrElse(t *testing.T) {
	assert.Equal(t, 3, None[int]().OrElse(3))
	assert.Equal(t, 4, Some(4).OrElse(3))
}

func TestPtrConversions(t *testing.T) {
	assert.Equal(t, None[string](), FromPtr((*string)(nil)))
	assert.Nil(t, None[int]().AsPtr())

	s := "x"
	assert.Equal(t, Some(s), FromPtr(&s))
	assert.Equal(t, &s, Some(s).AsPtr())
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := json.Marshal(Some(3))
	require.NoError(t, err)
	assert.Equal(t, "3", string(data))

	data, err = json.Marshal(None[int]())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var m Maybe[int]
	require.NoError(t, json.Unmarshal([]byte("5"), &m))
	assert.Equal(t, Some(5), m)
	require.NoError(t, json.Unmarshal([]byte("null"), &m))
	assert.False(t, m.IsDefined())
	assert.Error(t, m.UnmarshalJSON([]byte(`malformed json`)))
}
