package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier such as "lst_3f2a...". The prefix
// names the record kind; with an empty prefix the bare hex is returned.
func NewID(prefix string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	if prefix == "" {
		return hex.EncodeToString(buf)
	}
	return prefix + "_" + hex.EncodeToString(buf)
}
