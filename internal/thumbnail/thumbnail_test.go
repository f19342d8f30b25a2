package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerate_Downscales(t *testing.T) {
	src := encodePNG(t, 1200, 800)

	out, err := Generate(src)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, img.Bounds().Dx(), MaxWidth)
	assert.LessOrEqual(t, img.Bounds().Dy(), MaxHeight)
	// Aspect ratio preserved: 1200x800 fits as 450x300.
	assert.Equal(t, 450, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestGenerate_SmallImageNotUpscaled(t *testing.T) {
	src := encodePNG(t, 100, 60)

	out, err := Generate(src)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestGenerate_UndecodableBytes(t *testing.T) {
	_, err := Generate([]byte("definitely not an image"))
	assert.Error(t, err)
}
