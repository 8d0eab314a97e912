package finding

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// KeyVersion tracks the dedup key layout. It must be bumped if the key
// components change, since finding IDs are derived from it.
const KeyVersion = "v1"

// Key identifies a finding for deduplication: the producing scanner, the
// rule ID (or the title when the tool has no stable IDs), the file and the
// line. Keys never span scanners.
type Key struct {
	Scanner string
	Rule    string
	File    string
	Line    int
}

// String returns the canonical pipe-separated form of the key.
func (k Key) String() string {
	return strings.Join([]string{
		KeyVersion,
		k.Scanner,
		k.Rule,
		k.File,
		strconv.Itoa(k.Line),
	}, "|")
}

// Digest returns a short stable hash of the key, used as the finding ID.
func (k Key) Digest() string {
	sum := sha256.Sum256([]byte(k.String()))
	return hex.EncodeToString(sum[:8])
}
