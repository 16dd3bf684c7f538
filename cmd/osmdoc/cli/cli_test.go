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
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/model"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("OSMDOC_TEST_VALUE", "sqlite:///tmp/corpus.db")
	t.Setenv("OSMDOC_TEST_NUMBER", "6")
	t.Setenv("OSMDOC_TEST_GARBAGE", "six")

	assert.Equal(t, "sqlite:///tmp/corpus.db", GetEnv("OSMDOC_TEST_VALUE", "memory://"))
	assert.Equal(t, "memory://", GetEnv("OSMDOC_TEST_UNSET", "memory://"))
	assert.Equal(t, 6, GetEnvInt("OSMDOC_TEST_NUMBER", 2))
	assert.Equal(t, 2, GetEnvInt("OSMDOC_TEST_GARBAGE", 2))
	assert.Equal(t, 2, GetEnvInt("OSMDOC_TEST_UNSET", 2))
}

func TestOpenExport(t *testing.T) {
	for _, path := range []string{"sample.osm", "sample.osm.gz", "sample.osm.zst"} {
		t.Run(path, func(t *testing.T) {
			e, err := OpenExport(context.Background(), filepath.Join("../../../testdata", path), 1, false)
			require.NoError(t, err)

			defer func() { assert.NoError(t, e.Close()) }()

			assert.Equal(t, osmdoc.XML, e.Format)
			assert.Equal(t, "osmdoc testdata", e.Header().Generator)
			assert.Nil(t, e.Header().BoundingBox)

			rec, err := e.Decode()
			require.NoError(t, err)
			assert.Equal(t, model.Kind("bounds"), rec.Kind)
			assert.NotNil(t, e.Header().BoundingBox)
		})
	}
}

func TestOpenExportErrors(t *testing.T) {
	_, err := OpenExport(context.Background(), "../../../testdata/missing.osm", 1, false)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = OpenExport(context.Background(), "../../../go.mod", 1, false)
	assert.ErrorIs(t, err, osmdoc.ErrUnknownFormat)
}

func TestOutputValue(t *testing.T) {
	var out *osmdoc.Output

	v := NewOutputValue(&out)
	assert.Equal(t, "file", v.Type())
	assert.Empty(t, v.String())

	path := filepath.Join(t.TempDir(), "docs.json.gz")
	require.NoError(t, v.Set(path))
	assert.Equal(t, path, v.String())
	require.NotNil(t, out)

	_, err := io.WriteString(out, "{}\n")
	require.NoError(t, err)
	require.NoError(t, out.Close())

	in, err := osmdoc.NewInput(mustOpen(t, path), "docs.osm.gz")
	require.NoError(t, err)

	b, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(b))
	require.NoError(t, in.Close())

	assert.ErrorIs(t, v.Set(filepath.Join(t.TempDir(), "docs.json.bz2")), osmdoc.ErrUnsupportedCompression)
}

func TestSetupLogging(t *testing.T) {
	saved := slog.Default()
	defer slog.SetDefault(saved)

	var buf bytes.Buffer

	SetupLogging(&buf, false)
	slog.Debug("hidden")
	slog.Info("shown", "records", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown records=7")

	buf.Reset()

	SetupLogging(&buf, true)
	slog.Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG msg=visible")
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)

	return f
}
