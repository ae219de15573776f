// Package imaging loads, resizes and re-encodes raster images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format names.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
	FormatJXL  = "jxl"
	FormatAVIF = "avif"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 75

// ErrUnsupportedFormat is returned when a format cannot be encoded.
var ErrUnsupportedFormat = errors.New("imaging: unsupported format")

// encodable lists the formats Encode can write. The rest of the known
// formats are decode-only or unavailable.
var encodable = map[string]bool{
	FormatJPEG: true,
	FormatPNG:  true,
	FormatWebP: false,
	FormatTIFF: true,
	FormatBMP:  true,
	FormatJXL:  false,
	FormatAVIF: false,
}

// SupportedFormats reports, for every known format, whether it can be
// encoded.
func SupportedFormats() map[string]bool {
	out := make(map[string]bool, len(encodable))
	for k, v := range encodable {
		out[k] = v
	}
	return out
}

// SupportsFormat reports whether format can be encoded. Aliases such as
// "jpg" and "jpegxl" are accepted.
func SupportsFormat(format string) bool {
	return encodable[normalize(format)]
}

func normalize(format string) string {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "jpg":
		return FormatJPEG
	case "tif":
		return FormatTIFF
	case "jpegxl":
		return FormatJXL
	default:
		return f
	}
}

// Image is a decoded image. Operations return new images and leave the
// receiver untouched.
type Image struct {
	img    image.Image
	format string
}

// Load decodes the image file at path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: failed to load image: %w", err)
	}
	return Decode(data)
}

// Decode decodes an image from memory.
func Decode(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: failed to load image from buffer: %w", err)
	}
	return &Image{img: img, format: format}, nil
}

// Format returns the format the image was decoded from.
func (m *Image) Format() string { return m.format }

// Dimensions returns the width and height in pixels.
func (m *Image) Dimensions() (width, height int) {
	b := m.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize scales the image to fit within width x height, keeping its aspect
// ratio: both sides are scaled by the smaller of the two ratios.
func (m *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imaging: invalid target size %dx%d", width, height)
	}
	w, h := m.Dimensions()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("imaging: cannot resize empty image")
	}
	scale := math.Min(float64(width)/float64(w), float64(height)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), m.img, m.img.Bounds(), draw.Over, nil)
	return &Image{img: dst, format: m.format}, nil
}

// Encode renders the image in format. quality applies to JPEG (1-100); zero
// selects DefaultQuality.
func (m *Image) Encode(format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f := normalize(format); f {
	case FormatJPEG:
		if quality <= 0 {
			quality = DefaultQuality
		}
		err = jpeg.Encode(&buf, m.img, &jpeg.Options{Quality: min(quality, 100)})
	case FormatPNG:
		err = png.Encode(&buf, m.img)
	case FormatTIFF:
		err = tiff.Encode(&buf, m.img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(&buf, m.img)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Save encodes the image and writes it to path. An empty format is taken
// from the file extension.
func (m *Image) Save(path, format string, quality int) error {
	if format == "" {
		format = filepath.Ext(path)
	}
	data, err := m.Encode(format, quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("imaging: failed to write file: %w", err)
	}
	return nil
}

// EncodableFormats lists the formats Encode accepts, sorted.
func EncodableFormats() []string {
	var out []string
	for k, ok := range encodable {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
