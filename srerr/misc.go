package srerr

import (
	"fmt"
)

func NewInternalError(err error) *InternalError {
	if err == nil {
		err = fmt.Errorf("internal")
	}
	baseError := newBaseError(err, INTERNAL_ERROR)

	return &InternalError{
		baseError,
	}
}

func NewInternalErrorf(format string, args ...any) *InternalError {
	return NewInternalError(fmt.Errorf(format, args...))
}

type InternalError struct {
	baseError
}

func NewInvalidArgumentError(err error) *InvalidArgumentError {
	if err == nil {
		err = fmt.Errorf("invalid argument")
	}
	baseError := newBaseError(err, INVALID_ARGUMENT)

	return &InvalidArgumentError{
		baseError,
	}
}

func NewInvalidArgumentErrorf(format string, args ...any) *InvalidArgumentError {
	return NewInvalidArgumentError(fmt.Errorf(format, args...))
}

type InvalidArgumentError struct {
	baseError
}
