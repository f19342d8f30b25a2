package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	// Known SHA-256 of "abc".
	got := Hash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
	assert.Len(t, got, HashLength)
}

func TestHash_SameBytesSameDigest(t *testing.T) {
	a := Hash([]byte{0x01, 0x02, 0x03})
	b := Hash([]byte{0x01, 0x02, 0x03})
	c := Hash([]byte{0x01, 0x02, 0x04})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCaptureTime_FallsBackToNow(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	// Not a valid image at all.
	assert.Equal(t, fixed, CaptureTime([]byte("not an image")))
	// Valid-ish JPEG header, no EXIF segment.
	assert.Equal(t, fixed, CaptureTime([]byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x00}))
	// Empty input.
	assert.Equal(t, fixed, CaptureTime(nil))
}
