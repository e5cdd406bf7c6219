package srerr

import (
	"fmt"
)

// NewSubmissionError covers every way the remote platform can reject a step
// at creation time, including the degenerate case where the request is
// accepted but no step IDs come back.
func NewSubmissionError(clusterID string, err error) *SubmissionError {
	if err == nil {
		err = fmt.Errorf("initial submission error")
	}
	baseError := newBaseError(err, SUBMISSION_ERROR)
	baseError.AddDetail("Cluster ID", clusterID)

	return &SubmissionError{
		baseError,
	}
}

type SubmissionError struct {
	baseError
}

func NewStepQueryError(clusterID, stepID string, err error) *StepQueryError {
	if err == nil {
		err = fmt.Errorf("initial step query error")
	}
	baseError := newBaseError(err, STEP_QUERY_ERROR)
	baseError.AddDetail("Cluster ID", clusterID)
	baseError.AddDetail("Step ID", stepID)

	return &StepQueryError{
		baseError,
	}
}

type StepQueryError struct {
	baseError
}
