package domain

import (
	"errors"
	"fmt"
)

// Feed failure kinds. Every error returned by a feed client wraps exactly one.
var (
	ErrNetwork           = errors.New("network error")
	ErrEmptyResponse     = errors.New("empty response")
	ErrMalformedResponse = errors.New("malformed response")
)

var (
	// ErrInvalidCategory marks a supply advisory request outside categories 1-5.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidDistance marks a supply advisory request whose distance is
	// negative or not a number.
	ErrInvalidDistance = errors.New("distance must be a non-negative number")

	// ErrMissingCredential is returned when facility search is not configured
	// with an API key.
	ErrMissingCredential = errors.New("facility search credential not configured")

	ErrGeocoderDisabled = errors.New("geocoding is disabled")
	ErrPlaceNotFound    = errors.New("place not found")
)

// FeedError describes a failed feed fetch. It matches both its Kind sentinel
// and the underlying cause under errors.Is.
type FeedError struct {
	Feed  string
	Kind  error
	Cause error
}

// NewFeedError builds a FeedError for the named feed.
func NewFeedError(feed string, kind, cause error) *FeedError {
	return &FeedError{Feed: feed, Kind: kind, Cause: cause}
}

func (e *FeedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s feed: %v", e.Feed, e.Kind)
	}
	return fmt.Sprintf("%s feed: %v: %v", e.Feed, e.Kind, e.Cause)
}

func (e *FeedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
