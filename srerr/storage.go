package srerr

import (
	"errors"
	"fmt"
)

func NewInvalidLocationError(location string, err error) *InvalidLocationError {
	if err == nil {
		err = fmt.Errorf("initial invalid location error")
	}
	baseError := newBaseError(err, INVALID_LOCATION)
	baseError.AddDetail("Location", location)

	return &InvalidLocationError{
		baseError,
	}
}

type InvalidLocationError struct {
	baseError
}

func NewListingError(location string, err error) *ListingError {
	if err == nil {
		err = fmt.Errorf("initial listing error")
	}
	baseError := newBaseError(err, RESULT_LISTING_ERROR)
	baseError.AddDetail("Location", location)

	return &ListingError{
		baseError,
	}
}

type ListingError struct {
	baseError
}

func NewDownloadError(key string, err error) *DownloadError {
	if err == nil {
		err = fmt.Errorf("initial download error")
	}
	baseError := newBaseError(err, RESULT_DOWNLOAD_ERROR)
	baseError.AddDetail("Key", key)

	return &DownloadError{
		baseError,
	}
}

type DownloadError struct {
	baseError
}

func NewParseError(key string, err error) *ParseError {
	if err == nil {
		err = fmt.Errorf("initial parse error")
	}
	baseError := newBaseError(err, RESULT_PARSE_ERROR)
	baseError.AddDetail("Key", key)

	return &ParseError{
		baseError,
	}
}

type ParseError struct {
	baseError
}

func NewTransformSourceError(source string, err error) *TransformSourceError {
	if err == nil {
		err = fmt.Errorf("initial transform source error")
	}
	baseError := newBaseError(err, TRANSFORM_SOURCE_ERROR)
	baseError.AddDetail("Source", source)

	return &TransformSourceError{
		baseError,
	}
}

type TransformSourceError struct {
	baseError
}

// IsRetrievalError reports whether err came out of the result retrieval
// path. The client treats those as best-effort and keeps its zero exit
// code, unlike submission or polling failures.
func IsRetrievalError(err error) bool {
	var listing *ListingError
	var download *DownloadError
	var parse *ParseError
	return errors.As(err, &listing) || errors.As(err, &download) || errors.As(err, &parse)
}
