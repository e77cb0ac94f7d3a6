package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocator(t *testing.T) {
	t.Run("Starts at one and increases", func(t *testing.T) {
		var a IDAllocator
		require.True(t, a.Last().IsZero())

		prev := a.Next()
		assert.Equal(t, NewEntityID(0, 1), prev)
		for i := 0; i < 1000; i++ {
			id := a.Next()
			assert.True(t, prev.Less(id), "%s should be less than %s", prev, id)
			prev = id
		}
		assert.Equal(t, prev, a.Last())
	})

	t.Run("Carries into the high word", func(t *testing.T) {
		a := IDAllocator{last: NewEntityID(0, math.MaxUint64-1)}
		first := a.Next()
		second := a.Next()

		assert.Equal(t, NewEntityID(0, math.MaxUint64), first)
		assert.Equal(t, NewEntityID(1, 0), second)
		assert.True(t, first.Less(second))
	})
}

func TestEntityIDString(t *testing.T) {
	assert.Equal(t, "42", NewEntityID(0, 42).String())
	assert.Equal(t, "0x10000000000000002", NewEntityID(1, 2).String())

	text, err := NewEntityID(0, 7).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "7", string(text))
}

func TestParseEntityID(t *testing.T) {
	for _, id := range []EntityID{NewEntityID(0, 1), NewEntityID(0, math.MaxUint64), NewEntityID(1, 2), NewEntityID(math.MaxUint64, 0)} {
		parsed, err := ParseEntityID(id.String())
		require.NoError(t, err, id.String())
		assert.Equal(t, id, parsed)
	}

	var id EntityID
	require.NoError(t, id.UnmarshalText([]byte("9")))
	assert.Equal(t, NewEntityID(0, 9), id)

	for _, bad := range []string{"", "-1", "0x12", "0xzz00000000000000001", "ball"} {
		_, err := ParseEntityID(bad)
		assert.ErrorIs(t, err, ErrInvalidEntityID, bad)
	}
}

func TestEntityIDAsMapKey(t *testing.T) {
	m := map[EntityID]string{
		NewEntityID(0, 1): "a",
		NewEntityID(1, 1): "b",
	}
	assert.Equal(t, "a", m[NewEntityID(0, 1)])
	assert.Equal(t, "b", m[NewEntityID(1, 1)])
	_, ok := m[NewEntityID(0, 2)]
	assert.False(t, ok)
}
