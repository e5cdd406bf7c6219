// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package results

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steprunner/filestore"
	"github.com/steprunner/logging"
	"github.com/steprunner/srerr"
)

type violationRow struct {
	Name               string `parquet:"name"`
	TotalRedViolations int64  `parquet:"total_red_violations"`
}

// newOutputStore seeds an in-memory bucket with nFiles part files of
// rowsPerFile rows each under out/, plus a _SUCCESS marker if asked.
func newOutputStore(t *testing.T, nFiles, rowsPerFile int, withMarker bool) filestore.FileStore {
	ctx := context.Background()
	store, err := filestore.NewMemoryFileStore(ctx)
	require.NoError(t, err)

	row := 0
	for i := 0; i < nFiles; i++ {
		rows := make([]violationRow, 0, rowsPerFile)
		for j := 0; j < rowsPerFile; j++ {
			rows = append(rows, violationRow{Name: fmt.Sprintf("restaurant-%03d", row), TotalRedViolations: int64(row)})
			row++
		}
		data, err := filestore.WriteParquetBytes(rows)
		require.NoError(t, err)
		key := fmt.Sprintf("out/part-%05d-c000.snappy.parquet", i)
		require.NoError(t, store.Write(ctx, key, data))
	}
	if withMarker {
		require.NoError(t, store.Write(ctx, "out/_SUCCESS", []byte{}))
	}
	return store
}

func opener(store filestore.FileStore) StoreOpener {
	return func(ctx context.Context, bucket string) (filestore.FileStore, error) {
		return store, nil
	}
}

func TestRetrieveScenario(t *testing.T) {
	// 3 files x 4 rows plus a marker, limit 5: 5 displayed, 12 total, 3 files.
	store := newOutputStore(t, 3, 4, true)
	table, err := Retrieve(context.Background(), "s3://bucket/out", opener(store), RetrieveOptions{Limit: 5}, logging.NewTestLogger(t))
	require.NoError(t, err)

	assert.Len(t, table.Rows, 5)
	assert.Equal(t, 12, table.TotalRows)
	assert.Equal(t, 3, table.FileCount)
	assert.True(t, table.HasMarker)
	assert.Equal(t, []string{"name", "total_red_violations"}, table.Columns)
	// Listing order is preserved: rows from the first file come first.
	assert.Equal(t, "restaurant-000", table.Rows[0]["name"])
}

func TestRetrieveNoTruncation(t *testing.T) {
	type TestCase struct {
		Limit int
	}
	tests := map[string]TestCase{
		"Zero":     {Limit: 0},
		"Negative": {Limit: -1},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := newOutputStore(t, 2, 4, true)
			table, err := Retrieve(context.Background(), "s3://bucket/out", opener(store), RetrieveOptions{Limit: test.Limit}, logging.NewTestLogger(t))
			require.NoError(t, err)
			assert.Len(t, table.Rows, 8)
			assert.Equal(t, 8, table.TotalRows)
		})
	}
}

func TestRetrieveEmptyWithMarker(t *testing.T) {
	store := newOutputStore(t, 0, 0, true)
	table, err := Retrieve(context.Background(), "s3://bucket/out", opener(store), RetrieveOptions{Limit: 10}, logging.NewTestLogger(t))
	require.NoError(t, err)

	assert.True(t, table.Empty())
	assert.True(t, table.HasMarker)
	assert.Equal(t, 0, table.TotalRows)
}

func TestRetrieveEmptyWithoutMarker(t *testing.T) {
	store := newOutputStore(t, 0, 0, false)
	table, err := Retrieve(context.Background(), "s3://bucket/out", opener(store), RetrieveOptions{Limit: 10}, logging.NewTestLogger(t))
	require.NoError(t, err)

	assert.True(t, table.Empty())
	assert.False(t, table.HasMarker)
}

func TestRetrieveInvalidLocation(t *testing.T) {
	opened := false
	open := func(ctx context.Context, bucket string) (filestore.FileStore, error) {
		opened = true
		return nil, nil
	}

	for _, location := range []string{"bucket/out", "s3://bucket", "gs://bucket/out", ""} {
		_, err := Retrieve(context.Background(), location, open, RetrieveOptions{}, logging.NewTestLogger(t))
		require.Error(t, err, "location %q", location)
		var invalidErr *srerr.InvalidLocationError
		assert.True(t, errors.As(err, &invalidErr), "location %q", location)
	}
	// Validation failed before any store was touched.
	assert.False(t, opened)
}

func TestRetrieveParseError(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.NewMemoryFileStore(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "out/part-00000.parquet", []byte("not parquet")))
	require.NoError(t, store.Write(ctx, "out/_SUCCESS", []byte{}))

	_, err = Retrieve(ctx, "s3://bucket/out", opener(store), RetrieveOptions{}, logging.NewTestLogger(t))
	require.Error(t, err)
	assert.True(t, srerr.IsRetrievalError(err))
}

func TestRenderFooter(t *testing.T) {
	store := newOutputStore(t, 3, 4, true)
	table, err := Retrieve(context.Background(), "s3://bucket/out", opener(store), RetrieveOptions{Limit: 5}, logging.NewTestLogger(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	Render(&buf, table)
	out := buf.String()
	assert.Contains(t, out, "Showing 5 of 12 rows")
	assert.Contains(t, out, "Total files in output: 3")
	assert.Contains(t, out, "restaurant-000")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &Table{HasMarker: true})
	assert.True(t, strings.Contains(buf.String(), "produced no rows"))

	buf.Reset()
	Render(&buf, &Table{HasMarker: false})
	assert.True(t, strings.Contains(buf.String(), "no completion marker"))
}
