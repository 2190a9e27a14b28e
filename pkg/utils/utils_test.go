package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, GenerateUUID())
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 3, Max(1, 3))
	assert.Equal(t, 3, Max(3, 1))
	assert.Equal(t, 1, Min(1, 3))
	assert.Equal(t, -2, Min(0, -2))
}

func TestChunk(t *testing.T) {
	var windows [][2]int
	err := Chunk(3, 7, func(start, end int) error {
		windows = append(windows, [2]int{start, end})
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 7}}, windows)

	calls := 0
	err = Chunk(2, 6, func(start, end int) error {
		calls++
		return errors.New("stop")
	})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, 1, calls)

	assert.NoError(t, Chunk(5, 0, func(start, end int) error {
		t.Fatal("called for empty input")
		return nil
	}))
}
