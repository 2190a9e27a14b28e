// Package seed derives reproducible shuffle seeds from build identity.
package seed

import (
	"github.com/cespare/xxhash/v2"
)

// separator keeps ("ab", "c") and ("a", "bc") from hashing alike.
const separator = "\x00"

// Derive returns a seed that is stable for the same revision, user and task,
// shifted by override. Reruns against the same code state shard identically;
// changing override reshuffles without touching the identifiers.
func Derive(revision, user, task string, override int64) int64 {
	digest := xxhash.New()
	for _, part := range []string{revision, user, task} {
		_, _ = digest.WriteString(part)
		_, _ = digest.WriteString(separator)
	}
	return int64(digest.Sum64()) + override
}
