// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package transform

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/steprunner/filestore"
	"github.com/steprunner/logging"
	"github.com/steprunner/srerr"
)

const (
	nameColumn          = "Name"
	violationTypeColumn = "Violation Type"
	redViolation        = "RED"
)

// RedViolationCount is one output row: how many RED violations a
// restaurant accumulated in the input dataset.
type RedViolationCount struct {
	Name               string `parquet:"name"`
	TotalRedViolations int64  `parquet:"total_red_violations"`
}

// Run executes the fixed pipeline: read the delimited source with its
// header row, project Name and Violation Type, count rows per name
// filtered to RED, and write the result as parquet under outputKey,
// replacing whatever was there. A zero-byte _SUCCESS marker is written
// after all data files; rows are emitted sorted by name so output order
// is deterministic. Any failure is returned and is fatal to the job.
func Run(ctx context.Context, store filestore.FileStore, sourceKey, outputKey string, logger logging.Logger) error {
	return RunAcrossStores(ctx, store, store, sourceKey, outputKey, logger)
}

// RunAcrossStores is Run for the uncommon case where input and output live
// in different buckets.
func RunAcrossStores(ctx context.Context, sourceStore, outputStore filestore.FileStore, sourceKey, outputKey string, logger logging.Logger) error {
	logger.Infow("Reading source dataset", "source", sourceKey)
	counts, err := countRedViolations(ctx, sourceStore, sourceKey, logger)
	if err != nil {
		return err
	}

	rows := make([]RedViolationCount, 0, len(counts))
	for name, total := range counts {
		rows = append(rows, RedViolationCount{Name: name, TotalRedViolations: total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	logger.Infow("Aggregation finished", "rows", len(rows))

	return writeOutput(ctx, outputStore, outputKey, rows, logger)
}

func countRedViolations(ctx context.Context, store filestore.FileStore, sourceKey string, logger logging.Logger) (map[string]int64, error) {
	reader, err := store.Reader(ctx, sourceKey)
	if err != nil {
		return nil, srerr.NewTransformSourceError(sourceKey, err)
	}
	defer reader.Close()

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		return nil, srerr.NewTransformSourceError(sourceKey, fmt.Errorf("could not read header row: %w", err))
	}
	nameIdx, violationIdx := -1, -1
	for i, column := range header {
		switch strings.TrimSpace(column) {
		case nameColumn:
			nameIdx = i
		case violationTypeColumn:
			violationIdx = i
		}
	}
	if nameIdx == -1 || violationIdx == -1 {
		return nil, srerr.NewTransformSourceError(sourceKey,
			fmt.Errorf("header is missing required columns %q and/or %q: %v", nameColumn, violationTypeColumn, header))
	}

	counts := make(map[string]int64)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, srerr.NewTransformSourceError(sourceKey, err)
		}
		if len(record) <= nameIdx || len(record) <= violationIdx {
			logger.Warnw("Skipping record with insufficient column values", "record", record)
			continue
		}
		if record[violationIdx] == redViolation {
			counts[record[nameIdx]]++
		}
	}
	return counts, nil
}

func writeOutput(ctx context.Context, store filestore.FileStore, outputKey string, rows []RedViolationCount, logger logging.Logger) error {
	prefix := strings.TrimSuffix(outputKey, "/") + "/"

	// Overwrite semantics: clear any previous output before writing.
	if err := store.DeleteAll(ctx, prefix); err != nil {
		return srerr.NewInternalErrorf("could not clear existing output at %s: %v", prefix, err)
	}

	if len(rows) > 0 {
		data, err := filestore.WriteParquetBytes(rows)
		if err != nil {
			return err
		}
		partKey := fmt.Sprintf("%spart-00000-%s-c000.snappy.parquet", prefix, uuid.New().String())
		logger.Infow("Writing output part file", "key", partKey, "rows", len(rows))
		if err := store.Write(ctx, partKey, data); err != nil {
			return srerr.NewInternalErrorf("could not write output part file %s: %v", partKey, err)
		}
	}

	// The marker goes last: it asserts every data file is in place.
	markerKey := prefix + filestore.SuccessMarker
	if err := store.Write(ctx, markerKey, []byte{}); err != nil {
		return srerr.NewInternalErrorf("could not write completion marker %s: %v", markerKey, err)
	}
	logger.Infow("Output committed", "prefix", prefix)
	return nil
}
