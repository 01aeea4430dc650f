package common

import "hash/fnv"

// GenerateIDFromPath takes an absolute path and converts it into a numeric
// ID (an FNV-1a hash), stable for a given path independent of parse order.
func GenerateIDFromPath(abspath string) uint {
	h := fnv.New32a()
	h.Write([]byte(abspath))
	return uint(h.Sum32())
}
