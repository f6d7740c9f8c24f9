// Package checksum fingerprints content for change detection and ETags.
package checksum

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Sum returns the hex-encoded xxhash64 digest of data.
func Sum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Strings digests parts in order. Parts are separated so that
// ("ab", "c") and ("a", "bc") differ.
func Strings(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
