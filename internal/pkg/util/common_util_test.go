package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrToUint64(t *testing.T) {
	assert.Equal(t, uint64(42), StrToUint64("42"))
	assert.Zero(t, StrToUint64("not-a-number"))
	assert.Zero(t, StrToUint64(""))
}

func TestStrSliceToUInt64Slice(t *testing.T) {
	ids, err := StrSliceToUInt64Slice([]string{"1", "2", "99"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 99}, ids)

	_, err = StrSliceToUInt64Slice([]string{"1", "oops"})
	assert.Error(t, err)

	ids, err = StrSliceToUInt64Slice(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHashSessionID_Deterministic(t *testing.T) {
	a := HashSessionID("c2a8f5a0-1111-4222-8333-444455556666")
	b := HashSessionID("c2a8f5a0-1111-4222-8333-444455556666")
	assert.Equal(t, a, b)

	other := HashSessionID("c2a8f5a0-9999-4222-8333-444455556666")
	assert.NotEqual(t, a, other)
}
