// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	"github.com/steprunner/filestore"
	"github.com/steprunner/logging"
	"github.com/steprunner/srerr"
)

const (
	defaultConcurrency = 4
	downloadAttempts   = 3
)

// Table is the in-memory view of one output dataset: every part file
// concatenated in listing order, optionally truncated for display.
type Table struct {
	Columns []string
	Rows    []map[string]interface{}
	// TotalRows is the row count across all files before truncation.
	TotalRows int
	FileCount int
	// HasMarker distinguishes "the job committed an empty result" from
	// "the job has not produced output yet" when FileCount is zero.
	HasMarker bool
}

func (t *Table) Empty() bool {
	return t.FileCount == 0
}

type RetrieveOptions struct {
	// Limit caps displayed rows; zero or negative disables truncation.
	Limit int
	// Concurrency bounds the download worker pool.
	Concurrency int
}

// StoreOpener opens a bucket-scoped store once the output location has been
// validated. Indirection keeps retrieval testable against in-memory buckets.
type StoreOpener func(ctx context.Context, bucket string) (filestore.FileStore, error)

// Retrieve validates the output location, lists it, and assembles the
// result table. Zero data files is not an error: the returned Table is
// empty and HasMarker says whether the dataset was committed. Every real
// failure comes back typed: InvalidLocationError before any storage call,
// then ListingError, DownloadError or ParseError.
func Retrieve(ctx context.Context, location string, open StoreOpener, opts RetrieveOptions, logger logging.Logger) (*Table, error) {
	outputPath, err := filestore.ParseS3OutputLocation(location)
	if err != nil {
		return nil, err
	}

	store, err := open(ctx, outputPath.Bucket())
	if err != nil {
		return nil, srerr.NewListingError(location, err)
	}
	defer store.Close()

	logger.Infow("Listing objects", "location", location)
	prefix := outputPath.Key() + "/"
	keys, err := store.List(ctx, prefix)
	if err != nil {
		logger.Errorw("Could not list output location", "error", err)
		return nil, srerr.NewListingError(location, err)
	}

	dataFiles := make([]string, 0, len(keys))
	hasMarker := false
	for _, key := range keys {
		switch {
		case filestore.IsSuccessMarker(key):
			hasMarker = true
		case filestore.IsDataFile(key):
			dataFiles = append(dataFiles, key)
		}
	}

	if len(dataFiles) == 0 {
		if hasMarker {
			logger.Infow("Found completion marker but no data files; the job produced no rows", "location", location)
		} else {
			logger.Infow("No data files and no completion marker; the job may not have produced output yet", "location", location)
		}
		return &Table{HasMarker: hasMarker}, nil
	}

	rowsPerFile, columns, err := downloadAndParse(ctx, store, dataFiles, opts.concurrency(), logger)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Columns:   columns,
		FileCount: len(dataFiles),
		HasMarker: hasMarker,
	}
	for _, rows := range rowsPerFile {
		table.TotalRows += len(rows)
		table.Rows = append(table.Rows, rows...)
	}
	if opts.Limit > 0 && len(table.Rows) > opts.Limit {
		table.Rows = table.Rows[:opts.Limit]
	}
	return table, nil
}

func (opts RetrieveOptions) concurrency() int {
	if opts.Concurrency > 0 {
		return opts.Concurrency
	}
	return defaultConcurrency
}

// downloadAndParse stages every part file in a scoped temp dir, fetching
// with a bounded worker pool, then parses sequentially in listing order.
// The temp dir is removed on all exit paths. Files are independent, so
// fetch order doesn't matter; only the concatenation order does.
func downloadAndParse(ctx context.Context, store filestore.FileStore, keys []string, concurrency int, logger logging.Logger) ([][]map[string]interface{}, []string, error) {
	tempDir, err := os.MkdirTemp("", "step-results-")
	if err != nil {
		return nil, nil, srerr.NewDownloadError("", err)
	}
	defer os.RemoveAll(tempDir)

	localPaths := make([]string, len(keys))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for i, key := range keys {
		i, key := i, key
		localPaths[i] = filepath.Join(tempDir, fmt.Sprintf("part-%d.parquet", i))
		group.Go(func() error {
			logger.Infow("Downloading output file", "key", key)
			err := retry.Do(
				func() error {
					return store.Download(groupCtx, key, localPaths[i])
				},
				retry.Attempts(downloadAttempts),
				retry.Context(groupCtx),
			)
			if err != nil {
				return srerr.NewDownloadError(key, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	rowsPerFile := make([][]map[string]interface{}, len(keys))
	var columns []string
	for i, key := range keys {
		b, err := os.ReadFile(localPaths[i])
		if err != nil {
			return nil, nil, srerr.NewParseError(key, err)
		}
		rows, fileColumns, err := filestore.ReadParquetRows(b)
		if err != nil {
			return nil, nil, srerr.NewParseError(key, err)
		}
		rowsPerFile[i] = rows
		if columns == nil {
			columns = fileColumns
		}
	}
	return rowsPerFile, columns, nil
}
