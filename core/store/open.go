package store

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Open reads an attribute dump from a file. Compression is detected from the
// content; the format from the extension (".yaml"/".yml") or the content.
func Open(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	format := FormatAuto
	name := strings.TrimSuffix(strings.TrimSuffix(path, ".zst"), ".gz")
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	}

	obj, err := DecodeReader(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return obj, nil
}

// DecodeReader reads a possibly zstd- or gzip-compressed attribute dump.
func DecodeReader(r io.Reader, format Format) (*Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read attribute dump")
	}
	data, err = decompress(data)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "create zstd decoder")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.Wrap(err, "zstd decompress")
		}
		return out, nil
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Wrap(err, "gzip decompress")
		}
		return out, nil
	}
	return data, nil
}
