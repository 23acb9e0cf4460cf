package domain

import "time"

// ResultKind discriminates an AdvisoryResult.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultPartialFailure
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultPartialFailure:
		return "partial_failure"
	case ResultFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// AdvisoryResult is the value returned to the presentation layer by the
// engine's feed-backed operations.
//
//   - Success: Entries is valid (possibly empty) and Err is nil.
//   - PartialFailure: Entries is the usable subset and Err summarises what failed.
//   - Failure: Entries is nil and Err carries the reason.
type AdvisoryResult[T Locatable] struct {
	Kind      ResultKind
	Entries   []RankedEntry[T]
	Err       error
	FetchedAt time.Time
}

// Succeeded builds a Success result.
func Succeeded[T Locatable](entries []RankedEntry[T], fetchedAt time.Time) AdvisoryResult[T] {
	return AdvisoryResult[T]{Kind: ResultSuccess, Entries: entries, FetchedAt: fetchedAt}
}

// Failed builds a Failure result.
func Failed[T Locatable](err error) AdvisoryResult[T] {
	return AdvisoryResult[T]{Kind: ResultFailure, Err: err}
}

// OK reports whether the result carries usable entries.
func (r AdvisoryResult[T]) OK() bool {
	return r.Kind != ResultFailure
}

// Snapshot is the last successfully fetched record set for one feed.
type Snapshot[T any] struct {
	Records   []T
	FetchedAt time.Time
}
