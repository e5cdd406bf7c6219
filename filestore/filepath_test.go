// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseS3OutputLocation(t *testing.T) {
	type TestCase struct {
		Location        string
		ExpectedBucket  string
		ExpectedKey     string
		ExpectedFailure bool
	}

	tests := map[string]TestCase{
		"Valid": {
			Location:       "s3://my-bucket/path/to/output",
			ExpectedBucket: "my-bucket",
			ExpectedKey:    "path/to/output",
		},
		"ValidTrailingSlash": {
			Location:       "s3://my-bucket/path/to/output/",
			ExpectedBucket: "my-bucket",
			ExpectedKey:    "path/to/output",
		},
		"ValidS3AScheme": {
			Location:       "s3a://my-bucket/output",
			ExpectedBucket: "my-bucket",
			ExpectedKey:    "output",
		},
		"MissingScheme": {
			Location:        "my-bucket/path/to/output",
			ExpectedFailure: true,
		},
		"WrongScheme": {
			Location:        "gs://my-bucket/path/to/output",
			ExpectedFailure: true,
		},
		"EmptyKey": {
			Location:        "s3://my-bucket",
			ExpectedFailure: true,
		},
		"EmptyKeySlash": {
			Location:        "s3://my-bucket/",
			ExpectedFailure: true,
		},
		"Empty": {
			Location:        "",
			ExpectedFailure: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			fp, err := ParseS3OutputLocation(test.Location)
			if test.ExpectedFailure {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.ExpectedBucket, fp.Bucket())
			assert.Equal(t, test.ExpectedKey, fp.Key())
			assert.True(t, fp.IsValid())
			assert.True(t, fp.IsDir())
		})
	}
}

func TestS3FilepathToURI(t *testing.T) {
	fp := &S3Filepath{}
	if err := fp.ParseFilePath("s3://bucket/dir/file.parquet"); err != nil {
		t.Fatalf("ParseFilePath failed: %s", err)
	}
	if err := fp.Validate(); err != nil {
		t.Fatalf("Validate failed: %s", err)
	}
	assert.Equal(t, "s3://bucket/dir/file.parquet", fp.ToURI())
	assert.Equal(t, Parquet, fp.Ext())
	assert.Equal(t, "dir", fp.KeyPrefix())
	assert.False(t, fp.IsDir())
}

func TestNewEmptyFilepath(t *testing.T) {
	fp, err := NewEmptyFilepath(S3)
	assert.NoError(t, err)
	assert.NoError(t, fp.ParseFilePath("s3://bucket/key/file.parquet"))
	assert.NoError(t, fp.Validate())

	fp, err = NewEmptyFilepath(Memory)
	assert.NoError(t, err)
	assert.NoError(t, fp.ParseFilePath("file:///tmp/key/file.parquet"))

	_, err = NewEmptyFilepath(FileStoreType("AZURE"))
	assert.Error(t, err)
}

func TestOutputClassification(t *testing.T) {
	type TestCase struct {
		Key      string
		IsData   bool
		IsMarker bool
	}

	tests := map[string]TestCase{
		"ParquetSuffix":  {Key: "out/data.parquet", IsData: true},
		"PartSegment":    {Key: "out/part-00000-abc-c000.snappy.parquet", IsData: true},
		"BarePartFile":   {Key: "out/part-00001", IsData: true},
		"SuccessMarker":  {Key: "out/_SUCCESS", IsMarker: true},
		"UnrelatedFile":  {Key: "out/readme.txt"},
		"CommittedState": {Key: "out/.spark-staging/whatever"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.IsData, IsDataFile(test.Key))
			assert.Equal(t, test.IsMarker, IsSuccessMarker(test.Key))
		})
	}
}
