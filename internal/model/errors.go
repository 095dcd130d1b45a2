package model

import "errors"

var (
	// ErrData is returned for malformed or non-overlapping input series.
	ErrData = errors.New("data error")
	// ErrState is returned when a query runs before the required computation step.
	ErrState = errors.New("state error")
	// ErrConfig is returned when a structurally required characterization factor is missing.
	ErrConfig = errors.New("config error")
)
