package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns "kind:<sha256>" over the JSON encoding of parts. parts are
// the manifest hash plus whatever the keyer adds (ResultKeyOpts, a graph
// format), so two keys collide only when every resolution input matches.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of a manifest document. Result and graph keys
// are derived from it, so identical bytes share entries regardless of the
// file name they were read from.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
