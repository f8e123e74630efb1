package domain

import "errors"

var (
	// ErrBackendUnavailable covers every failed call to the simulation backend.
	ErrBackendUnavailable = errors.New("simulation backend unavailable")
	// ErrNoResult is returned when an action needs a current result and none exists.
	ErrNoResult = errors.New("no simulation result yet")
	// ErrComparisonUnavailable is returned when fewer than two scenarios are saved.
	ErrComparisonUnavailable = errors.New("comparison needs at least two saved scenarios")
	// ErrInvalidInput is returned for negative inputs or an unsupported service level.
	ErrInvalidInput = errors.New("invalid scenario input")
)
