// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/steprunner/config"
	"github.com/steprunner/filestore"
	"github.com/steprunner/logging"
	"github.com/steprunner/transform"
)

// The transform job binary. It runs on the cluster and performs one fixed
// aggregation: RED violation counts per restaurant name. Failures are fatal;
// the step scheduler owns retries.
func main() {
	_ = godotenv.Load()

	dataSource := flag.String("data_source", "", "S3 path to the input CSV")
	outputURI := flag.String("output_uri", "", "S3 path for the parquet output")
	flag.Parse()

	if *dataSource == "" || *outputURI == "" {
		fmt.Fprintln(os.Stderr, "both --data_source and --output_uri are required")
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.NewLogger("transform-job")
	ctx := context.Background()

	if err := run(ctx, *dataSource, *outputURI, logger); err != nil {
		logger.Errorw("Transform failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dataSource, outputURI string, logger logging.Logger) error {
	sourcePath, err := filestore.ParseS3OutputLocation(dataSource)
	if err != nil {
		return err
	}
	outputPath, err := filestore.ParseS3OutputLocation(outputURI)
	if err != nil {
		return err
	}
	// Input and output usually share a bucket but nothing requires it.
	if sourcePath.Bucket() == outputPath.Bucket() {
		store, err := openStore(ctx, sourcePath.Bucket())
		if err != nil {
			return err
		}
		defer store.Close()
		return transform.Run(ctx, store, sourcePath.Key(), outputPath.Key(), logger)
	}

	sourceStore, err := openStore(ctx, sourcePath.Bucket())
	if err != nil {
		return err
	}
	defer sourceStore.Close()
	outputStore, err := openStore(ctx, outputPath.Bucket())
	if err != nil {
		return err
	}
	defer outputStore.Close()
	return transform.RunAcrossStores(ctx, sourceStore, outputStore, sourcePath.Key(), outputPath.Key(), logger)
}

func openStore(ctx context.Context, bucket string) (filestore.FileStore, error) {
	return filestore.NewS3FileStore(ctx, filestore.S3FileStoreConfig{
		Bucket:         bucket,
		Region:         config.GetDefaultRegion(),
		AWSAccessKeyId: config.GetAWSAccessKeyId(),
		AWSSecretKey:   config.GetAWSSecretKey(),
	})
}
