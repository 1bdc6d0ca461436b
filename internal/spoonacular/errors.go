package spoonacular

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey means the client was built without an API key
	ErrMissingAPIKey = errors.New("spoonacular API key is not configured")

	// ErrNoSteps means the instructions payload held no usable steps
	ErrNoSteps = errors.New("no instruction steps available")
)

// UpstreamError is a non-2xx response from the recipe API.
// Body is best effort and may be empty.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.StatusCode)
}

// ProtocolError is a failure reaching the recipe API or decoding its response
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Outcome classifies the result of a recipe API call
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeConfig   Outcome = "config_error"
	OutcomeUpstream Outcome = "upstream_error"
	OutcomeProtocol Outcome = "protocol_error"
	OutcomeNoSteps  Outcome = "no_steps"
)

// Classify maps an error returned by Client to its Outcome.
// Unknown errors count as protocol errors.
func Classify(err error) Outcome {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrMissingAPIKey):
		return OutcomeConfig
	case errors.Is(err, ErrNoSteps):
		return OutcomeNoSteps
	case errors.As(err, &upstream):
		return OutcomeUpstream
	default:
		return OutcomeProtocol
	}
}

// StatusCode returns the upstream status carried by err, or 0
func StatusCode(err error) int {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode
	}
	return 0
}
