// services/game_service_test.go
package services

import (
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: batches stay under the cap, nothing is lost
func TestChunk(t *testing.T) {
	items := make([]int, 1000)
	for i := range items {
		items[i] = i
	}

	chunks := chunk(items, maxBatchOps)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 450)
	assert.Len(t, chunks[1], 450)
	assert.Len(t, chunks[2], 100)

	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), maxBatchOps)
		total += len(c)
	}
	assert.Equal(t, len(items), total)
}

func TestChunk_Edges(t *testing.T) {
	assert.Nil(t, chunk([]int(nil), 10))
	assert.Nil(t, chunk([]int{1, 2}, 0))

	single := chunk([]int{1, 2, 3}, 10)
	require.Len(t, single, 1)
	assert.Equal(t, []int{1, 2, 3}, single[0])
}

// Test: only mirrored fields fan out, renamed for the crew copies
func TestMirrorUpdates(t *testing.T) {
	fields := map[string]interface{}{
		"name":        "Cucanyes",
		"status":      "Activo",
		"description": "not mirrored",
	}

	updates := mirrorUpdates(fields)

	require.Len(t, updates, 2)
	paths := map[string]interface{}{}
	for _, u := range updates {
		paths[u.Path] = u.Value
	}
	assert.Equal(t, "Cucanyes", paths["gameName"])
	assert.Equal(t, "Activo", paths["gameStatus"])
	assert.NotContains(t, paths, "description")
}

// Test: an edit touching no mirrored field produces no fan-out
func TestMirrorUpdates_NothingMirrored(t *testing.T) {
	var updates []firestore.Update = mirrorUpdates(map[string]interface{}{"description": "x"})
	assert.Empty(t, updates)
}

// Test: every canonical field maps to its mirror name
func TestMirroredGameFields(t *testing.T) {
	assert.Equal(t, "gameName", mirroredGameFields["name"])
	assert.Equal(t, "gameSeason", mirroredGameFields["season"])
	assert.Equal(t, "gameDate", mirroredGameFields["date"])
	assert.Equal(t, "gameStatus", mirroredGameFields["status"])
}
