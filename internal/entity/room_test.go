package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_PlayerByID(t *testing.T) {
	t.Run("Finds a seated player and misses unknown ids", func(t *testing.T) {
		// Given: a room with a host
		host := &Player{ID: "conn-1", Name: "Alice", Symbol: MarkX, IsHost: true}
		room := NewRoom("ABC123", host)

		// When / Then: lookups behave by identity
		found, ok := room.PlayerByID("conn-1")
		require.True(t, ok)
		assert.Equal(t, host, found)

		_, ok = room.PlayerByID("conn-2")
		assert.False(t, ok)
	})
}

func TestRoom_RemovePlayerByID(t *testing.T) {
	t.Run("Removes one seat and preserves the other", func(t *testing.T) {
		// Given: a full room
		host := &Player{ID: "conn-1", Name: "Alice", Symbol: MarkX, IsHost: true}
		room := NewRoom("ABC123", host)
		guest := &Player{ID: "conn-2", Name: "Bob", Symbol: MarkO}
		room.Players = append(room.Players, guest)
		require.True(t, room.IsFull())

		// When: the host drops
		removed, ok := room.RemovePlayerByID("conn-1")

		// Then: only the guest remains
		require.True(t, ok)
		assert.Equal(t, host, removed)
		require.Len(t, room.Players, 1)
		assert.Equal(t, guest, room.Players[0])
		assert.False(t, room.IsFull())
	})
}
