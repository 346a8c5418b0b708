package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunkPreview(t *testing.T) {
	t.Run("Short content is returned whole", func(t *testing.T) {
		chunk := &Chunk{Content: "short content"}
		assert.Equal(t, "short content", chunk.Preview(200))
	})

	t.Run("Long content is truncated", func(t *testing.T) {
		chunk := &Chunk{Content: strings.Repeat("a", 300)}
		assert.Len(t, chunk.Preview(200), 200)
	})

	t.Run("Truncation never cuts a rune mid-sequence", func(t *testing.T) {
		// "ä" is two bytes, so a byte cut at 5 would land inside the third rune
		chunk := &Chunk{Content: strings.Repeat("ä", 10)}
		preview := chunk.Preview(5)
		assert.True(t, utf8.ValidString(preview), "Expected preview to be valid UTF-8")
		assert.Equal(t, "ää", preview, "Expected cut to back up to the rune boundary")
	})
}

func TestDefaultRetrievalConfig(t *testing.T) {
	config := DefaultRetrievalConfig()
	assert.Equal(t, 15, config.MaxResults)
	assert.Equal(t, 1, config.MaxHops)
	assert.Equal(t, 20, config.ExpansionCap)
	assert.True(t, config.FollowBidirectional)
	assert.Nil(t, config.RelationTypes, "Expected no type filter by default")
}
