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

package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/storage"
)

// Export is an opened OpenStreetMap export, XML or PBF, and the source of
// its records.
type Export struct {
	osmdoc.Source

	Format osmdoc.Format

	input   *osmdoc.Input
	decoder *osmdoc.Decoder
	pbf     *osmdoc.PBFSource
}

// OpenExport opens the export at path, or standard input for "-". The
// format and compression follow the suffixes of path. With progress set,
// the bytes read are tracked on standard error.
func OpenExport(ctx context.Context, path string, ncpu uint16, progress bool) (*Export, error) {
	f := os.Stdin

	if path != osmdoc.StdStream {
		var err error

		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}

	var rc io.ReadCloser = f

	if progress {
		var err error

		if rc, err = WrapInputFile(f); err != nil {
			_ = f.Close()

			return nil, err
		}
	}

	in, err := osmdoc.NewInput(rc, path)
	if err != nil {
		_ = rc.Close()

		return nil, err
	}

	e := &Export{Format: in.Format, input: in}

	switch in.Format {
	case osmdoc.PBF:
		e.pbf, err = osmdoc.NewPBFSource(ctx, in, int(ncpu))
		e.Source = e.pbf
	default:
		e.decoder, err = osmdoc.NewDecoder(ctx, in)
		e.Source = e.decoder
	}

	if err != nil {
		_ = in.Close()

		return nil, err
	}

	return e, nil
}

// Header returns what is known of the export's header. An XML export only
// supplies its bounds once the bounds element has been decoded.
func (e *Export) Header() model.Header {
	if e.pbf != nil {
		return e.pbf.Header
	}

	return e.decoder.Header
}

// Close releases the decoder and the underlying file.
func (e *Export) Close() error {
	var err error
	if e.pbf != nil {
		err = e.pbf.Close()
	}

	return errors.Join(err, e.input.Close())
}

// Load shapes the export at path into s with the number of CPUs the cpu
// flag of cmd names.
func Load(cmd *cobra.Command, s storage.Store, path string, progress bool) error {
	ncpu, err := NCpu(cmd)
	if err != nil {
		return err
	}

	e, err := OpenExport(cmd.Context(), path, ncpu, progress)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := osmdoc.Ingest(cmd.Context(), e, osmdoc.WithStore(s), osmdoc.WithNCpus(ncpu))
	if err != nil {
		return err
	}

	slog.Debug("loaded export", "path", path, "records", stats.Records, "documents", stats.Documents)

	return nil
}
