package domain

import "errors"

// Sentinel errors used to classify unit failures. Workers wrap these so
// coordinators and retry loops can decide behavior without string matching.
var (
	// ErrUnavailable: the content definitively does not exist (no captions,
	// feed has no episodes, document missing). Never retried.
	ErrUnavailable = errors.New("content not available")
	// ErrTransient: network-class failure worth retrying with backoff.
	ErrTransient = errors.New("transient error")
	// ErrRejected: the provider rejected the request (quota, malformed
	// input). Not retried.
	ErrRejected = errors.New("provider rejected request")
)

// IsTransient reports whether err should go through the retry/backoff path.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
