package services

import "errors"

var (
	// ErrParsingFailed wraps CSV/sheet parsing errors from an upload.
	ErrParsingFailed = errors.New("parsing failed")
	// ErrProcessingFailed wraps errors while storing parsed deals.
	ErrProcessingFailed = errors.New("processing failed")
)
