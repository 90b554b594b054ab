package apierr

// StatusError is a terminal non-2xx response. Error() is the server-provided
// message alone so callers can surface it verbatim; the classification
// sentinel is reachable through errors.Is via Unwrap.
type StatusError struct {
	StatusCode int
	Message    string

	// Kind is the sentinel this status classifies to (ErrServer,
	// ErrAuthFailed, ErrNetwork, ErrMalformedResponse).
	Kind error
}

func (e *StatusError) Error() string { return e.Message }

func (e *StatusError) Unwrap() error { return e.Kind }
