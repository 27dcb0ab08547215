package common

import "errors"

// Error taxonomy for the resolution engine. Callers are expected to match
// with errors.Is and degrade per failure mode: store reads fall through to
// search/inference, store writes log and continue, search failures count as
// an empty result set, and a malformed inference isolates the failure to the
// single entity being resolved.
var (
	// ErrStoreUnavailable wraps connectivity or auth failures against the
	// relation store.
	ErrStoreUnavailable = errors.New("relation store unavailable")

	// ErrSearchUnavailable wraps search provider failures, including the
	// absence of any configured provider.
	ErrSearchUnavailable = errors.New("web search unavailable")

	// ErrMalformedInference indicates the generative service returned
	// output that could not be parsed into the expected JSON shape.
	ErrMalformedInference = errors.New("malformed inference output")

	// ErrExtractionFailed indicates an extraction stage (brands, category,
	// citations) errored; the stage degrades to empty output.
	ErrExtractionFailed = errors.New("extraction failed")
)
