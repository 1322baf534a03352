package songbook

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest returns the hex BLAKE3-256 digest of text.
func Digest(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Changed reports whether p differs from the content whose digest is
// oldDigest. An empty oldDigest means there is no previous version.
func Changed(oldDigest string, p *Prepared) bool {
	return oldDigest == "" || p == nil || oldDigest != p.Digest
}
