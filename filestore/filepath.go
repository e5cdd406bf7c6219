// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/steprunner/srerr"
)

type FileType string

type FileStoreType string

const (
	Memory     FileStoreType = "MEMORY"
	FileSystem FileStoreType = "LOCAL_FILESYSTEM"
	S3         FileStoreType = "S3"
)

const (
	Parquet FileType = "parquet"
	CSV     FileType = "csv"
)

const (
	S3Prefix   = "s3://"
	S3APrefix  = "s3a://"
	FilePrefix = "file://"
)

// SuccessMarker is the zero-byte object Spark drops next to its part files
// once a write fully commits. Its presence is the only completeness signal
// the output dataset carries.
const SuccessMarker = "_SUCCESS"

var ValidSchemes = []string{
	S3Prefix, S3APrefix, FilePrefix,
}

func (ft FileType) Matches(file string) bool {
	ext := GetFileExtension(file)
	return FileType(ext) == ft
}

func GetFileExtension(file string) string {
	ext := filepath.Ext(file)
	return strings.ReplaceAll(ext, ".", "")
}

// IsDataFile classifies an object key the way Spark output is laid out:
// either an explicit .parquet suffix or a part-file naming convention.
func IsDataFile(key string) bool {
	if strings.HasSuffix(key, SuccessMarker) {
		return false
	}
	return Parquet.Matches(key) || strings.Contains(key, "/part-") || strings.HasPrefix(filepath.Base(key), "part-")
}

func IsSuccessMarker(key string) bool {
	return strings.HasSuffix(key, SuccessMarker)
}

type Filepath interface {
	// Scheme is the protocol prefix including "://" (e.g. s3://).
	Scheme() string
	SetScheme(scheme string)

	// Bucket returns the name of the bucket (or the root dir for local paths).
	Bucket() string
	SetBucket(bucket string)

	// Key is the object key relative to the bucket, without scheme or bucket.
	Key() string
	SetKey(key string)

	// KeyPrefix returns the directory portion of the key.
	KeyPrefix() string

	IsDir() bool
	SetIsDir(isDir bool)

	Ext() FileType

	// ToURI returns the full path including scheme and bucket.
	ToURI() string

	// ParseFilePath consumes a URI (e.g. s3://bucket/path/to/file) and parses
	// it into the parts the implementation expects.
	ParseFilePath(path string) error
	ParseDirPath(path string) error
	Validate() error
	IsValid() bool
}

func NewEmptyFilepath(storeType FileStoreType) (Filepath, error) {
	switch storeType {
	case S3:
		return &S3Filepath{FilePath{isDir: false}}, nil
	case Memory, FileSystem:
		return &FilePath{isDir: false}, nil
	default:
		return nil, srerr.NewInvalidArgumentErrorf("unknown store type '%s'", storeType)
	}
}

// ParseS3OutputLocation is the single entry point the client uses before
// touching the network: it rejects anything that is not s3://bucket/key
// with a non-empty key.
func ParseS3OutputLocation(location string) (*S3Filepath, error) {
	fp := &S3Filepath{}
	if err := fp.ParseDirPath(location); err != nil {
		return nil, srerr.NewInvalidLocationError(location, err)
	}
	if err := fp.Validate(); err != nil {
		return nil, srerr.NewInvalidLocationError(location, err)
	}
	return fp, nil
}

type FilePath struct {
	scheme  string
	bucket  string
	key     string
	isDir   bool
	isValid bool
}

func (fp *FilePath) SetScheme(scheme string) {
	fp.scheme = scheme
}

func (fp *FilePath) Scheme() string {
	return fp.scheme
}

func (fp *FilePath) SetBucket(bucket string) {
	fp.bucket = bucket
}

func (fp *FilePath) Bucket() string {
	return fp.bucket
}

func (fp *FilePath) SetKey(key string) {
	fp.key = key
}

func (fp *FilePath) Key() string {
	return fp.key
}

func (fp *FilePath) KeyPrefix() string {
	return filepath.Dir(fp.key)
}

func (fp *FilePath) Ext() FileType {
	ext := filepath.Ext(fp.key)
	// filepath.Ext returns the extension with the "." prefix, so we need to
	// trim it to match our FileType type.
	return FileType(strings.TrimPrefix(ext, "."))
}

func (fp *FilePath) ToURI() string {
	return fmt.Sprintf("%s%s/%s", fp.scheme, fp.bucket, fp.key)
}

func (fp *FilePath) SetIsDir(isDir bool) {
	fp.isDir = isDir
}

func (fp *FilePath) IsDir() bool {
	return fp.isDir
}

func (fp *FilePath) ParseFilePath(fullPath string) error {
	err := fp.parsePath(fullPath)
	if err != nil {
		return fmt.Errorf("file: %v", err)
	}
	fp.isDir = false
	return nil
}

func (fp *FilePath) ParseDirPath(fullPath string) error {
	err := fp.parsePath(fullPath)
	if err != nil {
		return fmt.Errorf("dir: %v", err)
	}
	fp.isDir = true
	return nil
}

func (fp *FilePath) checkSchemes(scheme string) error {
	for _, s := range ValidSchemes {
		if s == scheme {
			return nil
		}
	}
	return fmt.Errorf("invalid scheme '%s', must be one of %v", scheme, ValidSchemes)
}

func (fp *FilePath) parsePath(fullPath string) error {
	u, err := url.Parse(fullPath)
	if err != nil {
		return fmt.Errorf("could not parse fullpath '%s': %v", fullPath, err)
	}

	// url.Parse returns the bare protocol; our scheme constants carry "://".
	scheme := fmt.Sprintf("%s://", u.Scheme)
	if err := fp.checkSchemes(scheme); err != nil {
		return err
	}
	fp.scheme = scheme
	fp.bucket = u.Host
	fp.key = strings.Trim(u.Path, "/")
	return nil
}

func (fp *FilePath) IsValid() bool {
	return fp.isValid
}

func (fp *FilePath) Validate() error {
	if fp.scheme == "" {
		return fmt.Errorf("scheme cannot be empty")
	}
	if fp.bucket == "" {
		return fmt.Errorf("bucket cannot be empty")
	}
	fp.bucket = strings.Trim(fp.bucket, "/")
	if fp.key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	fp.key = strings.Trim(fp.key, "/")
	fp.isValid = true
	return nil
}

type S3Filepath struct {
	FilePath
}

func (s3 *S3Filepath) Validate() error {
	if s3.scheme != S3Prefix && s3.scheme != S3APrefix {
		return fmt.Errorf("invalid scheme '%s', must be '%s' or '%s'", s3.scheme, S3Prefix, S3APrefix)
	}
	if s3.bucket == "" {
		return fmt.Errorf("bucket cannot be empty")
	}
	s3.bucket = strings.Trim(s3.bucket, "/")
	if s3.key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	s3.key = strings.Trim(s3.key, "/")

	s3.isValid = true
	return nil
}

func (s3 *S3Filepath) ToURI() string {
	return fmt.Sprintf("%s%s/%s", s3.scheme, s3.bucket, s3.key)
}
