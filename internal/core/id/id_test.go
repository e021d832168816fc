package id

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TimeOrdered(t *testing.T) {
	a, b := New(), New()
	assert.False(t, IsNil(a))
	assert.Equal(t, 7, int(a.Version()))
	assert.Negative(t, compare(a, b))
}

func TestParse(t *testing.T) {
	v := New()
	got, err := Parse(v.String())
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = Parse("not-an-id")
	assert.Error(t, err)
	assert.True(t, IsNil(ID{}))
}

func compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}
