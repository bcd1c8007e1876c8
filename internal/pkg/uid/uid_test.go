package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_GenerateIsVersion7(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())

	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestSnowflake_GenerateIsMonotonic(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "7")

	gen, err := NewSnowflake()
	require.NoError(t, err)

	prev := gen.Generate()
	for range 100 {
		next := gen.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestSnowflake_RejectsOutOfRangeNode(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "5000")

	_, err := NewSnowflake()

	assert.Error(t, err)
}

func TestObjectID_GenerateIsUniqueHex(t *testing.T) {
	gen, err := NewObjectID()
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for range 1000 {
		id := gen.Generate()
		require.Len(t, id, 64)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
