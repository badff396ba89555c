package tracelog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// maxDecompressedSize bounds the size of a decompressed trace.
var maxDecompressedSize uint64 = 1 << 30

// ErrDecompressedTooLarge is returned when a compressed trace expands past
// the decompression limit.
var ErrDecompressedTooLarge = errors.New("decompressed trace log is too large")

// Load reads and decodes the trace stored at path. Files compressed with
// zstd or gzip are decompressed transparently.
func Load(path string, opts ...Option) (*TraceLog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace log: %w", err)
	}

	tl, err := LoadBytes(content, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

// LoadReader reads r to the end and decodes its content like Load.
func LoadReader(r io.Reader, opts ...Option) (*TraceLog, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading trace log: %w", err)
	}
	return LoadBytes(content, opts...)
}

// LoadBytes decodes content like Load, decompressing it first if needed.
//
// Content that only looks compressed is decoded as is, so a buffer that
// does not start with a Config record still fails with MissingConfigError.
func LoadBytes(content []byte, opts ...Option) (*TraceLog, error) {
	raw, err := decompress(content)
	switch {
	case errors.Is(err, ErrDecompressedTooLarge):
		return nil, err
	case err != nil:
		slog.Debug("decoding trace log as raw", "error", err)
		raw = content
	}
	return Decode(raw, opts...)
}

// decompress returns content unchanged unless it starts with a zstd or gzip
// magic number. A raw trace always starts with the Config tag (0), so the
// two cannot be confused.
func decompress(content []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(content, zstdMagic):
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecompressedSize))
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()

		out, err := dec.DecodeAll(content, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrDecompressedTooLarge, err)
		}
		if err != nil {
			return nil, fmt.Errorf("decompressing zstd trace log: %w", err)
		}
		return out, nil

	case bytes.HasPrefix(content, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("opening gzip trace log: %w", err)
		}
		defer func() {
			_ = zr.Close() //nolint:errcheck // Read-only stream
		}()

		out, err := io.ReadAll(io.LimitReader(zr, int64(maxDecompressedSize)+1))
		if err != nil {
			return nil, fmt.Errorf("decompressing gzip trace log: %w", err)
		}
		if uint64(len(out)) > maxDecompressedSize {
			return nil, ErrDecompressedTooLarge
		}
		return out, nil

	default:
		return content, nil
	}
}
