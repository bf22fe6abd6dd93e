package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ArtifactKey builds the cache key for a rendered artifact: the variant
// (e.g. "svg") plus the hash of the serialized scene it was derived from.
func ArtifactKey(variant string, sceneData []byte) string {
	return variant + ":" + Hash(sceneData)
}
