package registry

import "fmt"

// configError signals malformed declarative catalog data. Fatal at startup.
type configError struct{ msg string }

func (e configError) Error() string { return "configuration: " + e.msg }

func errConfig(format string, args ...any) error {
	return configError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a catalog configuration error.
func IsConfigError(err error) bool {
	_, ok := err.(configError)
	return ok
}
