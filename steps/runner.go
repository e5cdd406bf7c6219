// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package steps

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv2config "github.com/aws/aws-sdk-go-v2/config"
	awsv2Creds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/jonboulle/clockwork"

	"github.com/steprunner/logging"
	"github.com/steprunner/srerr"
)

// command-runner.jar is how EMR runs spark-submit on the primary node.
const commandRunnerJar = "command-runner.jar"

// emrAPI is the slice of the EMR client the runner needs; tests swap in a
// scripted fake.
type emrAPI interface {
	AddJobFlowSteps(ctx context.Context, params *emr.AddJobFlowStepsInput, optFns ...func(*emr.Options)) (*emr.AddJobFlowStepsOutput, error)
	DescribeStep(ctx context.Context, params *emr.DescribeStepInput, optFns ...func(*emr.Options)) (*emr.DescribeStepOutput, error)
	CancelSteps(ctx context.Context, params *emr.CancelStepsInput, optFns ...func(*emr.Options)) (*emr.CancelStepsOutput, error)
}

type Runner struct {
	client emrAPI
	clock  clockwork.Clock
	logger logging.Logger
}

type RunnerConfig struct {
	Region         string
	AWSAccessKeyId string
	AWSSecretKey   string
}

// NewRunner builds an EMR-backed runner. Credentials fall back to the
// default provider chain when no static pair is configured.
func NewRunner(ctx context.Context, config RunnerConfig, logger logging.Logger) (*Runner, error) {
	opts := []func(*awsv2config.LoadOptions) error{awsv2config.WithRegion(config.Region)}
	if config.AWSAccessKeyId != "" {
		opts = append(opts, awsv2config.WithCredentialsProvider(awsv2Creds.NewStaticCredentialsProvider(config.AWSAccessKeyId, config.AWSSecretKey, "")))
	}
	cfg, err := awsv2config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, srerr.NewSubmissionError("", err)
	}
	client := emr.NewFromConfig(cfg)

	return &Runner{
		client: client,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}, nil
}

// SubmitRequest names one unit of work: the script to run and the
// positional data locations handed to it.
type SubmitRequest struct {
	ClusterID  string
	JobName    string
	ScriptPath string
	DataSource string
	OutputURI  string
}

// submitArgs builds the spark-submit invocation the cluster's command
// runner executes.
func (req SubmitRequest) submitArgs() []string {
	return []string{
		"spark-submit",
		req.ScriptPath,
		"--data_source", req.DataSource,
		"--output_uri", req.OutputURI,
	}
}

// Submit queues one step on the cluster and returns its ID. The failure
// policy is CONTINUE: a failed step must not tear the cluster down. EMR may
// in principle return several step IDs for one request; only the first is
// ever acted upon, and an empty list is treated as a rejected submission.
func (r *Runner) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	logger := r.logger.With("cluster_id", req.ClusterID, "job_name", req.JobName)
	logger.Infow("Submitting Spark step",
		"script", req.ScriptPath,
		"input", req.DataSource,
		"output", req.OutputURI,
	)

	params := &emr.AddJobFlowStepsInput{
		JobFlowId: aws.String(req.ClusterID),
		Steps: []emrtypes.StepConfig{
			{
				Name: aws.String(req.JobName),
				HadoopJarStep: &emrtypes.HadoopJarStepConfig{
					Jar:  aws.String(commandRunnerJar),
					Args: req.submitArgs(),
				},
				ActionOnFailure: emrtypes.ActionOnFailureContinue,
			},
		},
	}
	resp, err := r.client.AddJobFlowSteps(ctx, params)
	if err != nil {
		logger.Errorw("Could not add job flow steps to cluster", "error", err)
		return "", srerr.NewSubmissionError(req.ClusterID, err)
	}
	if len(resp.StepIds) == 0 {
		logger.Errorw("Cluster accepted the request but returned no step IDs")
		wrapped := srerr.NewSubmissionError(req.ClusterID, nil)
		wrapped.SetMessage("cluster returned no step IDs")
		return "", wrapped
	}
	stepID := resp.StepIds[0]
	if len(resp.StepIds) > 1 {
		logger.Warnw("Cluster returned multiple step IDs for one submission; acting on the first only", "step_ids", resp.StepIds)
	}
	logger.Infow("Step submitted", "step_id", stepID)
	return stepID, nil
}

// StepStatus is the slice of EMR's step state the client observes.
type StepStatus struct {
	State          emrtypes.StepState
	FailureMessage string
}

func (s StepStatus) Terminal() bool {
	switch s.State {
	case emrtypes.StepStateCompleted, emrtypes.StepStateFailed, emrtypes.StepStateCancelled:
		return true
	default:
		return false
	}
}

func (s StepStatus) Completed() bool {
	return s.State == emrtypes.StepStateCompleted
}

// DescribeStep is a stateless read of current step status. Transient
// failures are not retried here; the caller decides.
func (r *Runner) DescribeStep(ctx context.Context, clusterID, stepID string) (StepStatus, error) {
	resp, err := r.client.DescribeStep(ctx, &emr.DescribeStepInput{
		ClusterId: aws.String(clusterID),
		StepId:    aws.String(stepID),
	})
	if err != nil {
		return StepStatus{}, srerr.NewStepQueryError(clusterID, stepID, err)
	}
	status := StepStatus{State: resp.Step.Status.State}
	if details := resp.Step.Status.FailureDetails; details != nil && details.Message != nil {
		status.FailureMessage = *details.Message
	}
	return status, nil
}

// CancelStep asks the cluster to stop a step that is no longer wanted,
// typically because it outlived the caller's wait deadline.
func (r *Runner) CancelStep(ctx context.Context, clusterID, stepID string) error {
	_, err := r.client.CancelSteps(ctx, &emr.CancelStepsInput{
		ClusterId: aws.String(clusterID),
		StepIds:   []string{stepID},
	})
	if err != nil {
		r.logger.Errorw("Could not cancel step", "error", err, "cluster_id", clusterID, "step_id", stepID)
		return srerr.NewStepQueryError(clusterID, stepID, err)
	}
	return nil
}
