// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv2cfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
)

// FileStore is the object storage surface the client and the transform job
// share. Keys are always relative to the bucket the store was opened on;
// listing order is whatever the backend returns.
type FileStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Reader(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context, prefix string) error
	Download(ctx context.Context, key, localPath string) error
	FilestoreType() FileStoreType
	Close() error
}

type genericFileStore struct {
	bucket    *blob.Bucket
	storeType FileStoreType
}

func (store genericFileStore) Write(ctx context.Context, key string, data []byte) error {
	return store.bucket.WriteAll(ctx, key, data, nil)
}

func (store genericFileStore) Read(ctx context.Context, key string) ([]byte, error) {
	return store.bucket.ReadAll(ctx, key)
}

func (store genericFileStore) Reader(ctx context.Context, key string) (io.ReadCloser, error) {
	return store.bucket.NewReader(ctx, key, nil)
}

func (store genericFileStore) Exists(ctx context.Context, key string) (bool, error) {
	return store.bucket.Exists(ctx, key)
}

func (store genericFileStore) List(ctx context.Context, prefix string) ([]string, error) {
	opts := blob.ListOptions{
		Prefix: prefix,
	}
	listIterator := store.bucket.List(&opts)
	keys := make([]string, 0)
	for {
		listObj, err := listIterator.Next(ctx)
		if err == io.EOF {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		if !listObj.IsDir {
			keys = append(keys, listObj.Key)
		}
	}
}

func (store genericFileStore) Delete(ctx context.Context, key string) error {
	return store.bucket.Delete(ctx, key)
}

func (store genericFileStore) DeleteAll(ctx context.Context, prefix string) error {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := store.bucket.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete object %s under prefix %s: %v", key, prefix, err)
		}
	}
	return nil
}

func (store genericFileStore) Download(ctx context.Context, key, localPath string) error {
	reader, err := store.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return err
	}
	defer reader.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (store genericFileStore) FilestoreType() FileStoreType {
	return store.storeType
}

func (store genericFileStore) Close() error {
	return store.bucket.Close()
}

type S3FileStoreConfig struct {
	Bucket         string
	Region         string
	AWSAccessKeyId string
	AWSSecretKey   string
}

type S3FileStore struct {
	Bucket string
	genericFileStore
}

// NewS3FileStore opens a bucket-scoped store. Credentials fall back to the
// default provider chain when no static pair is configured, which is what
// lets the same binary run on a laptop profile or an instance role.
func NewS3FileStore(ctx context.Context, config S3FileStoreConfig) (FileStore, error) {
	opts := []func(*awsv2cfg.LoadOptions) error{awsv2cfg.WithRegion(config.Region)}
	if config.AWSAccessKeyId != "" {
		opts = append(opts, awsv2cfg.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: config.AWSAccessKeyId, SecretAccessKey: config.AWSSecretKey,
			},
		}))
	}
	cfg, err := awsv2cfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	clientV2 := s3v2.NewFromConfig(cfg)
	bucket, err := s3blob.OpenBucketV2(ctx, clientV2, config.Bucket, nil)
	if err != nil {
		return nil, err
	}
	return &S3FileStore{
		Bucket: config.Bucket,
		genericFileStore: genericFileStore{
			bucket:    bucket,
			storeType: S3,
		},
	}, nil
}

// NewMemoryFileStore backs the FileStore interface with an in-memory bucket.
func NewMemoryFileStore(ctx context.Context) (FileStore, error) {
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		return nil, err
	}
	return &genericFileStore{
		bucket:    bucket,
		storeType: Memory,
	}, nil
}

// NewLocalFileStore serves a directory on the local filesystem.
func NewLocalFileStore(ctx context.Context, dirPath string) (FileStore, error) {
	bucket, err := blob.OpenBucket(ctx, fmt.Sprintf("file://%s", dirPath))
	if err != nil {
		return nil, err
	}
	return &genericFileStore{
		bucket:    bucket,
		storeType: FileSystem,
	}, nil
}
