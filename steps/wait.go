// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package steps

import (
	"context"
	"time"

	"github.com/steprunner/srerr"
)

const DefaultPollInterval = 30 * time.Second

type WaitOptions struct {
	// PollInterval is how long the loop sleeps between status reads.
	PollInterval time.Duration
	// MaxWait bounds the whole wait; zero means wait as long as the step
	// runs. When the deadline passes the step is cancelled on the cluster
	// so it doesn't burn the cluster indefinitely.
	MaxWait time.Duration
}

func (opts *WaitOptions) withDefaults() WaitOptions {
	out := WaitOptions{PollInterval: DefaultPollInterval}
	if opts == nil {
		return out
	}
	if opts.PollInterval > 0 {
		out.PollInterval = opts.PollInterval
	}
	out.MaxWait = opts.MaxWait
	return out
}

// WaitForStep polls until the step reaches a terminal state and returns
// true iff that state is COMPLETED. FAILED and CANCELLED both return false
// with no error: the wait itself succeeded, the step did not. The loop is
// the client's only retry mechanism; a status read failure ends the wait
// with a StepQueryError. Cancelling ctx ends the wait without touching
// the remote step.
func (r *Runner) WaitForStep(ctx context.Context, clusterID, stepID string, opts *WaitOptions) (bool, error) {
	o := opts.withDefaults()
	logger := r.logger.WithStep(clusterID, stepID).With("poll_interval", o.PollInterval.String())
	logger.Infow("Waiting for step to complete")

	var deadline time.Time
	if o.MaxWait > 0 {
		deadline = r.clock.Now().Add(o.MaxWait)
	}

	for {
		status, err := r.DescribeStep(ctx, clusterID, stepID)
		if err != nil {
			logger.Errorw("Status check failed", "error", err)
			return false, err
		}
		logger.Infow("Current status", "state", status.State)

		if status.Terminal() {
			logger.Infow("Step finished", "state", status.State)
			if status.FailureMessage != "" {
				logger.Errorw("Step failure details", "message", status.FailureMessage)
			}
			return status.Completed(), nil
		}

		if !deadline.IsZero() && !r.clock.Now().Before(deadline) {
			logger.Errorw("Step exceeded max wait duration; cancelling", "max_wait", o.MaxWait.String())
			if cancelErr := r.CancelStep(ctx, clusterID, stepID); cancelErr != nil {
				wrapped := srerr.NewStepQueryError(clusterID, stepID, cancelErr)
				wrapped.SetMessage("step exceeded max wait duration and could not be cancelled")
				return false, wrapped
			}
			wrapped := srerr.NewStepQueryError(clusterID, stepID, nil)
			wrapped.SetMessage("step exceeded max wait duration and was cancelled")
			return false, wrapped
		}

		select {
		case <-ctx.Done():
			return false, srerr.NewStepQueryError(clusterID, stepID, ctx.Err())
		case <-r.clock.After(o.PollInterval):
		}
	}
}
