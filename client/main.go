// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/steprunner/config"
	"github.com/steprunner/filestore"
	"github.com/steprunner/logging"
	"github.com/steprunner/results"
	"github.com/steprunner/steps"
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	clusterID := flag.String("cluster-id", "", "EMR cluster ID (e.g. j-1VE06SA9NF1LV)")
	region := flag.String("region", config.GetDefaultRegion(), "AWS region")
	script := flag.String("script", "", "S3 path to the job script")
	input := flag.String("input", "", "S3 path to the input data")
	output := flag.String("output", "", "S3 path for the output data")
	wait := flag.Bool("wait", false, "Wait for job completion")
	showResults := flag.Bool("show-results", false, "Show results after job completion (requires --wait)")
	limit := flag.Int("limit", 10, "Maximum number of result rows to display; <= 0 shows all")
	pollInterval := flag.Duration("poll-interval", config.GetPollInterval(), "How often to poll step status")
	maxWait := flag.Duration("max-wait", config.GetMaxWait(), "Give up and cancel the step after this long; 0 waits forever")
	flag.Parse()

	for name, value := range map[string]string{
		"cluster-id": *clusterID,
		"script":     *script,
		"input":      *input,
		"output":     *output,
	} {
		if value == "" {
			fmt.Fprintf(os.Stderr, "missing required flag --%s\n", name)
			flag.Usage()
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewLogger("step-client").WithRunID(logging.NewRunID())

	if err := run(ctx, runArgs{
		clusterID:    *clusterID,
		region:       *region,
		script:       *script,
		input:        *input,
		output:       *output,
		wait:         *wait,
		showResults:  *showResults,
		limit:        *limit,
		pollInterval: *pollInterval,
		maxWait:      *maxWait,
	}, logger); err != nil {
		logger.Errorw("Run failed", "error", err)
		os.Exit(1)
	}
}

type runArgs struct {
	clusterID    string
	region       string
	script       string
	input        string
	output       string
	wait         bool
	showResults  bool
	limit        int
	pollInterval time.Duration
	maxWait      time.Duration
}

func run(ctx context.Context, args runArgs, logger logging.Logger) error {
	runner, err := steps.NewRunner(ctx, steps.RunnerConfig{
		Region:         args.region,
		AWSAccessKeyId: config.GetAWSAccessKeyId(),
		AWSSecretKey:   config.GetAWSSecretKey(),
	}, logger)
	if err != nil {
		return err
	}

	stepID, err := runner.Submit(ctx, steps.SubmitRequest{
		ClusterID:  args.clusterID,
		JobName:    config.GetJobName(),
		ScriptPath: args.script,
		DataSource: args.input,
		OutputURI:  args.output,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Successfully added step with ID: %s\n", stepID)

	if !args.wait {
		return nil
	}

	completed, err := runner.WaitForStep(ctx, args.clusterID, stepID, &steps.WaitOptions{
		PollInterval: args.pollInterval,
		MaxWait:      args.maxWait,
	})
	if err != nil {
		return err
	}
	if !completed {
		return fmt.Errorf("step %s did not complete successfully", stepID)
	}

	if args.showResults {
		// Result retrieval is best-effort: the step already succeeded, so a
		// failure here is logged and the run still exits cleanly.
		showStepResults(ctx, args, logger)
	}
	return nil
}

func showStepResults(ctx context.Context, args runArgs, logger logging.Logger) {
	opener := func(ctx context.Context, bucket string) (filestore.FileStore, error) {
		return filestore.NewS3FileStore(ctx, filestore.S3FileStoreConfig{
			Bucket:         bucket,
			Region:         args.region,
			AWSAccessKeyId: config.GetAWSAccessKeyId(),
			AWSSecretKey:   config.GetAWSSecretKey(),
		})
	}
	table, err := results.Retrieve(ctx, args.output, opener, results.RetrieveOptions{
		Limit:       args.limit,
		Concurrency: config.GetDownloadConcurrency(),
	}, logger)
	if err != nil {
		logger.Errorw("Could not retrieve results", "error", err, "output", args.output)
		return
	}
	results.Render(os.Stdout, table)
}
