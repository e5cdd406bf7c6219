// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileStoreOperations(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryFileStore(ctx)
	require.NoError(t, err)
	defer store.Close()

	testData := []byte("hello")
	require.NoError(t, store.Write(ctx, "dir/test_file.txt", testData))

	exists, err := store.Exists(ctx, "dir/test_file.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Read(ctx, "dir/test_file.txt")
	require.NoError(t, err)
	assert.Equal(t, testData, data)

	require.NoError(t, store.Write(ctx, "dir/other_file.txt", []byte("x")))
	require.NoError(t, store.Write(ctx, "elsewhere/file.txt", []byte("y")))

	keys, err := store.List(ctx, "dir/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"dir/test_file.txt", "dir/other_file.txt"}, keys)

	require.NoError(t, store.DeleteAll(ctx, "dir/"))
	keys, err = store.List(ctx, "dir/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// The other prefix is untouched.
	exists, err = store.Exists(ctx, "elsewhere/file.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileStoreDownload(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryFileStore(ctx)
	require.NoError(t, err)
	defer store.Close()

	testData := []byte("downloaded contents")
	require.NoError(t, store.Write(ctx, "out/part-00000.parquet", testData))

	localPath := filepath.Join(t.TempDir(), "part-0.parquet")
	require.NoError(t, store.Download(ctx, "out/part-00000.parquet", localPath))

	data, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, testData, data)
}

func TestLocalFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalFileStore(ctx, t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, FileSystem, store.FilestoreType())

	require.NoError(t, store.Write(ctx, "sub/file.csv", []byte("a,b\n1,2\n")))
	data, err := store.Read(ctx, "sub/file.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b\n1,2\n"), data)

	require.NoError(t, store.Delete(ctx, "sub/file.csv"))
	exists, err := store.Exists(ctx, "sub/file.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestParquetRoundTrip(t *testing.T) {
	type row struct {
		Name  string `parquet:"name"`
		Total int64  `parquet:"total"`
	}
	data, err := WriteParquetBytes([]row{
		{Name: "alpha", Total: 3},
		{Name: "beta", Total: 1},
	})
	require.NoError(t, err)

	rows, columns, err := ReadParquetRows(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "total"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0]["name"])
	assert.Equal(t, int64(3), rows[0]["total"])

	_, err = WriteParquetBytes([]row{})
	assert.Error(t, err)
}
