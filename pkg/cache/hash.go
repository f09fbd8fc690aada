package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/familygraph/pkg/family"
)

// hashKey generates a key of the form prefix:sha256(parts...).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data as 64 hex characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashJSON hashes the JSON encoding of v.
func HashJSON(v any) string {
	data, _ := json.Marshal(v)
	return Hash(data)
}

// GraphHash identifies a graph by content. Node and edge order matter: they
// fix the initial placement, and so the settled layout.
func GraphHash(g family.Graph) string {
	return HashJSON(g)
}
