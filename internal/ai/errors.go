package ai

import "fmt"

// ProviderError reports a failed call to a hosted model. Status carries the
// HTTP status code when the provider exposed one, zero otherwise.
type ProviderError struct {
	Provider Provider
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider", e.Provider)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}

	if e.Err == nil {
		return msg + ": request failed"
	}

	return msg + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether a retry may succeed. Rate limits and server-side
// failures qualify; everything else does not.
func (e *ProviderError) Temporary() bool {
	return e.Status == 429 || e.Status >= 500
}

// ConfigurationError reports an invalid model setup, such as an unknown
// provider tag or a missing credential. It is detected before any provider
// call is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "model configuration: " + e.Reason
}
