package model

import "github.com/zeebo/xxh3"

// URLHash returns a stable 64-bit digest of a tab URL. Logs carry this digest
// instead of the raw URL so browsing history never lands in log storage.
func URLHash(url string) uint64 {
	return xxh3.HashString(url)
}
