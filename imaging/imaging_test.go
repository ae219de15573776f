package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeAndDimensions(t *testing.T) {
	img, err := Decode(testPNG(t, 100, 50))
	require.NoError(t, err)
	w, h := img.Dimensions()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
	assert.Equal(t, FormatPNG, img.Format())

	_, err = Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestResizeKeepsAspectRatio(t *testing.T) {
	img, err := Decode(testPNG(t, 100, 100))
	require.NoError(t, err)

	square, err := img.Resize(50, 50)
	require.NoError(t, err)
	w, h := square.Dimensions()
	assert.Equal(t, [2]int{50, 50}, [2]int{w, h})

	fit, err := img.Resize(80, 20)
	require.NoError(t, err)
	w, h = fit.Dimensions()
	assert.Equal(t, [2]int{20, 20}, [2]int{w, h})

	w, h = img.Dimensions()
	assert.Equal(t, [2]int{100, 100}, [2]int{w, h}, "original untouched")

	_, err = img.Resize(0, 10)
	assert.Error(t, err)
}

func TestEncodeFormats(t *testing.T) {
	img, err := Decode(testPNG(t, 32, 32))
	require.NoError(t, err)

	for _, f := range EncodableFormats() {
		data, err := img.Encode(f, 0)
		require.NoError(t, err, f)
		back, err := Decode(data)
		require.NoError(t, err, f)
		assert.Equal(t, f, back.Format())
	}

	_, err = img.Encode("avif", 80)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = img.Encode("webp", 80)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestJPEGQualityAffectsSize(t *testing.T) {
	img, err := Decode(testPNG(t, 128, 128))
	require.NoError(t, err)
	low, err := img.Encode("jpg", 10)
	require.NoError(t, err)
	high, err := img.Encode("jpeg", 95)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))
}

func TestSaveAndLoad(t *testing.T) {
	img, err := Decode(testPNG(t, 10, 20))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, img.Save(path, "", 80))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, loaded.Format())

	assert.ErrorIs(t, img.Save(filepath.Join(t.TempDir(), "out.jxl"), "", 0), ErrUnsupportedFormat)
	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	assert.True(t, formats[FormatJPEG])
	assert.True(t, formats[FormatPNG])
	assert.False(t, formats[FormatAVIF])
	assert.Contains(t, formats, FormatWebP)

	assert.True(t, SupportsFormat("JPG"))
	assert.True(t, SupportsFormat(".tif"))
	assert.False(t, SupportsFormat("jpegxl"))
	assert.False(t, SupportsFormat("gif"))
}
