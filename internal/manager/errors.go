package manager

// loadFailureError signals a backend that failed to initialize after the
// retry budget was exhausted.
type loadFailureError struct {
	id    string
	cause error
}

func (e loadFailureError) Error() string {
	if e.cause == nil {
		return "load failure: " + e.id
	}
	return "load failure: " + e.id + ": " + e.cause.Error()
}

func (e loadFailureError) Unwrap() error { return e.cause }

// ErrLoadFailure constructs a load failure for id.
func ErrLoadFailure(id string, cause error) error {
	return loadFailureError{id: id, cause: cause}
}

// IsLoadFailure reports whether err indicates a backend that could not be
// made Ready. Budget exhaustion surfaces as a load failure too.
func IsLoadFailure(err error) bool {
	switch err.(type) {
	case loadFailureError, budgetExceededError:
		return true
	}
	return false
}

// budgetExceededError signals that not enough could be evicted to admit a
// new backend.
type budgetExceededError struct{ id string }

func (e budgetExceededError) Error() string {
	return "budget exceeded: cannot admit " + e.id
}

// ErrBudgetExceeded constructs a budget exhaustion error for id.
func ErrBudgetExceeded(id string) error { return budgetExceededError{id: id} }

// IsBudgetExceeded reports whether err indicates budget exhaustion
// specifically.
func IsBudgetExceeded(err error) bool {
	_, ok := err.(budgetExceededError)
	return ok
}

// notInCatalogError signals an acquire for an id the registry does not know.
type notInCatalogError struct{ id string }

func (e notInCatalogError) Error() string { return "backend not in catalog: " + e.id }

// ErrNotInCatalog constructs a catalog miss error for id.
func ErrNotInCatalog(id string) error { return notInCatalogError{id: id} }

// IsNotInCatalog reports whether err indicates an unknown backend id.
func IsNotInCatalog(err error) bool {
	_, ok := err.(notInCatalogError)
	return ok
}
