package content

import "hash/fnv"

// Hash returns a fast FNV-1a hash of the raw content string. It is not
// cryptographic; collisions are tolerated because the worst outcome is
// one suppressed scan for an unrelated string.
func Hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
