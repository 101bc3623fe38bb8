package transform

import (
	"errors"
	"strings"

	"professional-persona-ai/internal/asset"
)

const genericFailure = "Failed to transform image."

// ConfigurationError means no credential was found; no call was attempted.
type ConfigurationError struct {
	Checked []string
}

func (e *ConfigurationError) Error() string {
	return "API Key not found in environment."
}

// TransportError means the call to the service did not complete.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return genericFailure
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EmptyResultError means the call completed but carried no inline image.
type EmptyResultError struct {
	Candidates int
}

func (e *EmptyResultError) Error() string {
	return "No image data returned from the model."
}

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindTransport     Kind = "transport"
	KindEmptyResult   Kind = "empty_result"
	KindValidation    Kind = "validation"
	KindUnknown       Kind = "unknown"
)

// KindOf classifies err into the transformation error taxonomy.
func KindOf(err error) Kind {
	var (
		configErr    *ConfigurationError
		transportErr *TransportError
		emptyErr     *EmptyResultError
		validErr     *asset.ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &configErr):
		return KindConfiguration
	case errors.As(err, &emptyErr):
		return KindEmptyResult
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &validErr):
		return KindValidation
	}
	return KindUnknown
}

// BeforeNetwork reports whether err was raised before any call was attempted.
func BeforeNetwork(err error) bool {
	switch KindOf(err) {
	case KindConfiguration, KindValidation:
		return true
	}
	return false
}
