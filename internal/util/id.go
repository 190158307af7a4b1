package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewLocalID returns a short identifier for records that exist only on this
// client, such as provisional comments awaiting server confirmation.
func NewLocalID() string {
	bytes := make([]byte, 6)
	_, _ = rand.Read(bytes)
	return "local_" + hex.EncodeToString(bytes)
}
