package codec

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

type compression struct {
	name       string
	compress   func(d []byte) ([]byte, error)
	decompress func(d []byte) ([]byte, error)
}

var (
	gzipCompression   = &compression{"gzip", gzipCompressData, gzipDecompressData}
	zstdCompression   = &compression{"zstd", zstdCompressData, zstdDecompressData}
	brotliCompression = &compression{"br", brCompressData, brDecompressData}
)

var compressionByExt = map[string]*compression{
	".gz":   gzipCompression,
	".zst":  zstdCompression,
	".zstd": zstdCompression,
	".br":   brotliCompression,
}

// compressed wraps a codec so the serialized bytes are compressed
type compressed struct {
	inner Codec
	comp  *compression
}

func (c *compressed) Name() string {
	return c.inner.Name() + "+" + c.comp.name
}

func (c *compressed) Marshal(v any) ([]byte, error) {
	d, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.comp.compress(d)
}

func (c *compressed) Unmarshal(d []byte, v any) error {
	d, err := c.comp.decompress(d)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(d, v)
}

// Decompress undoes compression applied by c, if any.
// Used to show raw file content.
func Decompress(c Codec, d []byte) ([]byte, error) {
	cc, ok := c.(*compressed)
	if !ok {
		return d, nil
	}
	return cc.comp.decompress(d)
}

func gzipCompressData(d []byte) ([]byte, error) {
	var dst bytes.Buffer
	w, err := gzip.NewWriterLevel(&dst, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	if err = errors.Join(err, w.Close()); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func gzipDecompressData(d []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(d))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func zstdCompressData(d []byte) ([]byte, error) {
	var dst bytes.Buffer
	// zstd.SpeedBestCompression is much slower and not much better
	w, err := zstd.NewWriter(&dst, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	if err = errors.Join(err, w.Close()); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func zstdDecompressData(d []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(d))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func brCompressData(d []byte) ([]byte, error) {
	var dst bytes.Buffer
	w := brotli.NewWriterLevel(&dst, brotli.DefaultCompression)
	_, err := w.Write(d)
	if err = errors.Join(err, w.Close()); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func brDecompressData(d []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(d)))
}
