package orchestrator

// classifierUnavailableError signals that the main brain could not classify.
// Fatal for the request, not for the process.
type classifierUnavailableError struct{ cause error }

func (e classifierUnavailableError) Error() string {
	if e.cause == nil {
		return "classifier unavailable"
	}
	return "classifier unavailable: " + e.cause.Error()
}

func (e classifierUnavailableError) Unwrap() error { return e.cause }

// ErrClassifierUnavailable wraps cause as a classifier failure.
func ErrClassifierUnavailable(cause error) error {
	return classifierUnavailableError{cause: cause}
}

// IsClassifierUnavailable reports whether err indicates the main brain was
// down during classification.
func IsClassifierUnavailable(err error) bool {
	_, ok := err.(classifierUnavailableError)
	return ok
}

// invocationFailureError signals a loaded backend that erred during use.
type invocationFailureError struct {
	id    string
	cause error
}

func (e invocationFailureError) Error() string {
	msg := "invocation failure: " + e.id
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e invocationFailureError) Unwrap() error { return e.cause }

// ErrInvocationFailure wraps cause as an invocation failure of backend id.
func ErrInvocationFailure(id string, cause error) error {
	return invocationFailureError{id: id, cause: cause}
}

// IsInvocationFailure reports whether err indicates a backend that erred
// mid-invocation.
func IsInvocationFailure(err error) bool {
	_, ok := err.(invocationFailureError)
	return ok
}

// rejectedError is terminal: neither a specialist nor the main brain could
// serve the capability.
type rejectedError struct{ capability string }

func (e rejectedError) Error() string {
	return "rejected: no backend available for " + e.capability
}

// ErrRejected constructs a terminal rejection for capability.
func ErrRejected(capability string) error { return rejectedError{capability: capability} }

// IsRejected reports whether err is a terminal routing rejection.
func IsRejected(err error) bool {
	_, ok := err.(rejectedError)
	return ok
}
