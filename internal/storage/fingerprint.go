package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint reduces a set of input files to one stable hex digest. Each
// file contributes a "path@contenthash" line; lines are sorted before the
// final hash so map iteration order cannot leak into the result.
func Fingerprint(files map[string][]byte) string {
	lines := make([]string, 0, len(files))
	for path, content := range files {
		sum := sha256.Sum256(content)
		lines = append(lines, path+"@"+hex.EncodeToString(sum[:]))
	}
	sort.Strings(lines)

	digest := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(digest[:])
}
