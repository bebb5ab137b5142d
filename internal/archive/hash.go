package archive

import (
	"crypto/sha256"
	"encoding/hex"
)

// contentHash and fileContentHash compute the dedup key half of
// (url, content_hash) — spec §4.1.1 dedupes files, and every per-content
// table's UNIQUE(url, content_hash) dedupes content rows, by this value.
func contentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func fileContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
