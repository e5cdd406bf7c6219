// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"bytes"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/steprunner/srerr"
)

// ParquetIterator yields rows as generic maps so callers don't need a
// compile-time schema for whatever the remote job happened to write.
type ParquetIterator struct {
	reader *parquet.Reader
	fields []parquet.Field
}

func (p *ParquetIterator) Next() (map[string]interface{}, error) {
	value := make(map[string]interface{})
	err := p.reader.Read(&value)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Columns returns field names in schema order, which is the column order
// the job wrote and the order results are rendered in.
func (p *ParquetIterator) Columns() []string {
	columns := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		columns = append(columns, f.Name())
	}
	return columns
}

func (p *ParquetIterator) NumRows() int64 {
	return p.reader.NumRows()
}

func ParquetIteratorFromBytes(b []byte) (*ParquetIterator, error) {
	// NewReader panics on malformed input, so open the file first and get
	// an error we can hand back instead.
	file, err := parquet.OpenFile(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	reader := parquet.NewReader(file)
	return &ParquetIterator{
		reader: reader,
		fields: reader.Schema().Fields(),
	}, nil
}

// ReadParquetRows drains a parquet file into memory. Part files written by
// one Spark step are small enough that streaming isn't worth the machinery.
func ReadParquetRows(b []byte) ([]map[string]interface{}, []string, error) {
	iterator, err := ParquetIteratorFromBytes(b)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]map[string]interface{}, 0)
	for {
		row, err := iterator.Next()
		if err != nil {
			return nil, nil, err
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows, iterator.Columns(), nil
}

// WriteParquetBytes serializes a slice of like-typed structs; the schema is
// inferred from the first element.
func WriteParquetBytes[T any](list []T) ([]byte, error) {
	if len(list) == 0 {
		return nil, srerr.NewInvalidArgumentErrorf("cannot write parquet bytes for an empty list")
	}
	schema := parquet.SchemaOf(list[0])
	buf := new(bytes.Buffer)
	err := parquet.Write[T](
		buf,
		list,
		schema,
	)
	if err != nil {
		return nil, srerr.NewInternalErrorf("could not write parquet file to bytes: %v", err)
	}
	return buf.Bytes(), nil
}
