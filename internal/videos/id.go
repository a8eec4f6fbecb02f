package videos

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
)

// idAlphabet is the 64-character URL-safe alphabet used for share ids and
// storage names. 64 symbols means each byte of entropy maps to exactly one
// character.
const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz-"

const (
	shareIDLength     = 8
	storageNameLength = 10
)

// NewID returns a fresh short identifier suitable for public share URLs.
func NewID() (string, error) {
	return randomString(shareIDLength)
}

// NewStorageName returns a server-local name for a stored binary, preserving
// the original file extension so static serving keeps a usable content type.
func NewStorageName(originalName string) (string, error) {
	name, err := randomString(storageNameLength)
	if err != nil {
		return "", err
	}
	return name + filepath.Ext(originalName), nil
}

func randomString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random id: %w", err)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf), nil
}
