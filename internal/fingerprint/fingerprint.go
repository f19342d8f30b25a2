// Package fingerprint computes per-file identity used for deduplication:
// a SHA-256 content hash and a best-effort capture timestamp from EXIF.
// Both functions are pure over the supplied bytes.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// HashLength is the length of a hex-encoded SHA-256 digest.
const HashLength = 64

// Hash returns the lowercase hex SHA-256 digest of the raw file bytes.
// The digest is the deduplication key, scoped per event by the index.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CaptureTime extracts the original capture timestamp from EXIF metadata.
// Capture time is a best-effort enrichment: on any parse failure (corrupt
// or missing metadata, unsupported format) it returns now() instead of an
// error.
func CaptureTime(data []byte) time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return now()
	}
	dt, err := x.DateTime()
	if err != nil {
		return now()
	}
	return dt
}

// now is a seam for tests.
var now = time.Now
