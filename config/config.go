package config

import (
	"time"

	"github.com/steprunner/helpers"
)

// Defaults mirror the environment the job has always run in; every value
// can be overridden per deployment without a rebuild.

func GetDefaultRegion() string {
	return helpers.GetEnv("AWS_REGION", "us-east-2")
}

func GetJobName() string {
	return helpers.GetEnv("STEP_JOB_NAME", "ProcessViolationsData")
}

func GetPollInterval() time.Duration {
	return helpers.GetEnvDuration("STEP_POLL_INTERVAL", 30*time.Second)
}

func GetMaxWait() time.Duration {
	return helpers.GetEnvDuration("STEP_MAX_WAIT", 0)
}

func GetDownloadConcurrency() int {
	return helpers.GetEnvInt("RESULT_DOWNLOAD_CONCURRENCY", 4)
}

func GetAWSAccessKeyId() string {
	return helpers.GetEnv("AWS_ACCESS_KEY_ID", "")
}

func GetAWSSecretKey() string {
	return helpers.GetEnv("AWS_SECRET_ACCESS_KEY", "")
}
