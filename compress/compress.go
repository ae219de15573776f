// Package compress provides one-shot encoders and decoders for zstd, brotli
// and gzip. Decoders refuse output larger than MaxDecodedSize.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxDecodedSize bounds the output of every decoder.
const MaxDecodedSize = 128 << 20

// ErrTooLarge is returned when decoded output would exceed MaxDecodedSize.
var ErrTooLarge = errors.New("compress: output exceeds maximum allowed size")

// Shared zstd codecs; both are safe for concurrent EncodeAll/DecodeAll.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
)

// ZstdEncode compresses data with zstd at the default level.
func ZstdEncode(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// ZstdDecode decompresses a zstd frame.
func ZstdDecode(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if len(out) > MaxDecodedSize {
		return nil, ErrTooLarge
	}
	return out, nil
}

// BrotliEncode compresses data with brotli at the given quality (0-11).
// Out-of-range qualities are clamped.
func BrotliEncode(data []byte, quality int) ([]byte, error) {
	quality = min(max(quality, brotli.BestSpeed), brotli.BestCompression)
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, quality)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("brotli encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli encode: %w", err)
	}
	return buf.Bytes(), nil
}

// BrotliDecode decompresses a brotli stream.
func BrotliDecode(data []byte) ([]byte, error) {
	out, err := readBounded(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("brotli decode: %w", err)
	}
	return out, nil
}

// GzipEncode compresses data with gzip at the default level.
func GzipEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip encode: %w", err)
	}
	return buf.Bytes(), nil
}

// GzipDecode decompresses a gzip stream.
func GzipDecode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decode: %w", err)
	}
	defer r.Close()
	out, err := readBounded(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decode: %w", err)
	}
	return out, nil
}

func readBounded(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecodedSize {
		return nil, ErrTooLarge
	}
	return out, nil
}
