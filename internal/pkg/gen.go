package pkg

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodeLength is the fixed length of a room code.
const RoomCodeLength = 6

// GenerateRoomCode - generates a 6-char uppercase alphanumeric room code.
func GenerateRoomCode() (string, error) {
	b := make([]byte, RoomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i := range b {
		b[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
	}

	return string(b), nil
}

// GenerateSessionID - generates a new unique connection identity.
func GenerateSessionID() string {
	return uuid.NewString()
}
