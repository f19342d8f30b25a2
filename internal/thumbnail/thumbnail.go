// Package thumbnail derives downsized, recompressed previews from uploaded
// image bytes. Video content never reaches this package.
package thumbnail

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Target dimensions and quality are fixed configuration constants: the
// preview fits inside MaxWidth×MaxHeight preserving aspect ratio.
const (
	MaxWidth  = 450
	MaxHeight = 450
	Quality   = 60
)

// Generate decodes src, downsizes it to fit inside the target box and
// re-encodes it as JPEG. Images already smaller than the box are only
// recompressed, never upscaled.
func Generate(src []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > MaxWidth || b.Dy() > MaxHeight {
		img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}
