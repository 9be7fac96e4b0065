package discovery

import "errors"

// ErrMalformedPayload marks a controller response that still fails to
// parse after all known textual repairs. The poll loop treats it as a
// retryable cycle failure, never as fatal.
var ErrMalformedPayload = errors.New("malformed payload")
