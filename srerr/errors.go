package srerr

const (
	// CLUSTER:
	SUBMISSION_ERROR = "Submission Error"
	STEP_QUERY_ERROR = "Step Query Error"

	// STORAGE:
	INVALID_LOCATION       = "Invalid Location"
	RESULT_LISTING_ERROR   = "Result Listing Error"
	RESULT_DOWNLOAD_ERROR  = "Result Download Error"
	RESULT_PARSE_ERROR     = "Result Parse Error"
	TRANSFORM_SOURCE_ERROR = "Transform Source Error"

	// MISCELLANEOUS:
	INTERNAL_ERROR   = "Internal Error"
	INVALID_ARGUMENT = "Invalid Argument"
)

type JSONStackTrace map[string]interface{}

// Error is the interface every typed error in this package satisfies. It
// separates the kind of failure (GetType) from the human-readable message
// so callers can branch without string matching.
type Error interface {
	GetType() string
	AddDetail(key, value string)
	Details() map[string]string
	Error() string
}

func newBaseError(err error, errorType string) baseError {
	genericError := NewGenericError(err)

	return baseError{
		errorType:    errorType,
		GenericError: genericError,
	}
}

type baseError struct {
	errorType string
	GenericError
}

func (e *baseError) GetType() string {
	return e.errorType
}

func (e *baseError) AddDetail(key, value string) {
	e.GenericError.AddDetail(key, value)
}

func (e *baseError) Error() string {
	return e.GenericError.Error()
}
