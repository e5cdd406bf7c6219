package logging

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type Logger struct {
	*zap.SugaredLogger
}

type RunID string

// NewRunID tags every log line of one client invocation so interleaved
// runs against the same cluster can be told apart.
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

func (logger Logger) WithRunID(id RunID) Logger {
	return Logger{
		logger.With("run-id", id),
	}
}

func (logger Logger) WithStep(clusterID, stepID string) Logger {
	return Logger{
		logger.With("cluster-id", clusterID, "step-id", stepID),
	}
}

func NewLogger(service string) Logger {
	baseLogger, err := zap.NewDevelopment(
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		panic(err)
	}
	logger := baseLogger.Sugar().Named(service)
	return Logger{
		logger,
	}
}

func NewTestLogger(t *testing.T) Logger {
	return Logger{
		zaptest.NewLogger(t).Sugar(),
	}
}
