package session

import (
	"crypto/rand"
	"fmt"
)

const (
	sessionIDLength = 6

	// no 0/O or 1/I so codes survive being read aloud
	sessionIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateSessionID - generates a short invite code for a session.
func GenerateSessionID() (string, error) {
	buf := make([]byte, sessionIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = sessionIDAlphabet[int(b)%len(sessionIDAlphabet)]
	}

	return string(buf), nil
}
