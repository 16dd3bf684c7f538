// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package osmdoc

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
)

// StdStream names standard input or output in place of a path.
const StdStream = "-"

// ErrUnknownFormat is returned for a path whose suffix names neither an XML
// nor a PBF export.
var ErrUnknownFormat = errors.New("unknown input format")

// ErrUnsupportedCompression is returned when writing a compression format
// that can only be read.
var ErrUnsupportedCompression = errors.New("unsupported output compression")

// Compression is the stream compression of a file, chosen by its suffix.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
	Zstd
	Xz
	Lz4
)

var suffixes = map[string]Compression{
	".gz":  Gzip,
	".bz2": Bzip2,
	".zst": Zstd,
	".xz":  Xz,
	".lz4": Lz4,
}

func (c Compression) String() string {
	for suffix, s := range suffixes {
		if s == c {
			return strings.TrimPrefix(suffix, ".")
		}
	}

	return "none"
}

// Format is the encoding of an export.
type Format int

const (
	XML Format = iota
	PBF
)

func (f Format) String() string {
	if f == PBF {
		return "pbf"
	}

	return "xml"
}

// Detect returns the format and compression named by the suffixes of path,
// e.g. "brisbane.osm.bz2" or "australia.osm.pbf".
func Detect(path string) (Format, Compression, error) {
	if path == StdStream {
		return XML, None, nil
	}

	name := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(name)

	compression, compressed := suffixes[ext]
	if compressed {
		name = strings.TrimSuffix(name, ext)
		ext = filepath.Ext(name)
	}

	switch ext {
	case ".osm", ".xml":
		return XML, compression, nil
	case ".pbf":
		return PBF, compression, nil
	default:
		return XML, compression, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Input is a decompressed export stream.
type Input struct {
	io.Reader

	Format      Format
	Compression Compression

	closers []io.Closer
}

// OpenInput opens the file at path, or standard input for "-", and
// decompresses it according to its suffix.
func OpenInput(path string) (*Input, error) {
	if path == StdStream {
		return NewInput(io.NopCloser(os.Stdin), path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	in, err := NewInput(f, path)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	return in, nil
}

// NewInput wraps r, read from the file named path, with the decompressor its
// suffix calls for. Closing the Input closes r.
func NewInput(r io.ReadCloser, path string) (*Input, error) {
	format, compression, err := Detect(path)
	if err != nil {
		return nil, err
	}

	in := &Input{Format: format, Compression: compression, closers: []io.Closer{r}}

	var rdr io.Reader

	switch compression {
	case None:
		rdr = r
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}

		in.closers = append(in.closers, zr)
		rdr = zr
	case Bzip2:
		rdr = bzip2.NewReader(r)
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}

		rc := zr.IOReadCloser()
		in.closers = append(in.closers, rc)
		rdr = rc
	case Xz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}

		rdr = xr
	case Lz4:
		rdr = lz4.NewReader(r)
	}

	in.Reader = rdr

	return in, nil
}

// Close closes the decompressor and then the underlying file.
func (in *Input) Close() error {
	var errs []error

	for i := len(in.closers) - 1; i >= 0; i-- {
		errs = append(errs, in.closers[i].Close())
	}

	return errors.Join(errs...)
}

// Output is a compressing writer over a created file.
type Output struct {
	io.Writer

	closers []io.Closer
}

// CreateOutput creates the file at path, or uses standard output for "-",
// compressing what is written according to its suffix.
func CreateOutput(path string) (*Output, error) {
	if path == StdStream {
		return &Output{Writer: os.Stdout}, nil
	}

	compression := suffixes[strings.ToLower(filepath.Ext(path))]
	if compression == Bzip2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, compression)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	out, err := NewOutput(f, compression)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	return out, nil
}

// NewOutput wraps w with a compressor. Closing the Output flushes the
// compressor and closes w.
func NewOutput(w io.WriteCloser, compression Compression) (*Output, error) {
	out := &Output{closers: []io.Closer{w}}

	switch compression {
	case None:
		out.Writer = w
	case Gzip:
		zw := gzip.NewWriter(w)
		out.closers = append(out.closers, zw)
		out.Writer = zw
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}

		out.closers = append(out.closers, zw)
		out.Writer = zw
	case Xz:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("xz writer: %w", err)
		}

		out.closers = append(out.closers, xw)
		out.Writer = xw
	case Lz4:
		lw := lz4.NewWriter(w)
		out.closers = append(out.closers, lw)
		out.Writer = lw
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, compression)
	}

	return out, nil
}

// Close flushes the compressor and then closes the underlying file.
func (out *Output) Close() error {
	var errs []error

	for i := len(out.closers) - 1; i >= 0; i-- {
		errs = append(errs, out.closers[i].Close())
	}

	return errors.Join(errs...)
}
