package culture

import (
	"errors"
	"fmt"
)

// ErrUnknownCulture is matched by every culture resolution failure.
var ErrUnknownCulture = errors.New("culture is not supported")

// UnknownCultureError reports a culture name the locale database could not resolve.
type UnknownCultureError struct {
	Name string
	Err  error
}

func (e *UnknownCultureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("culture %q is not supported", e.Name)
	}
	return fmt.Sprintf("culture %q is not supported: %v", e.Name, e.Err)
}

func (e *UnknownCultureError) Unwrap() error {
	return e.Err
}

func (e *UnknownCultureError) Is(target error) bool {
	return target == ErrUnknownCulture
}

func unknownCulture(name string, err error) error {
	return &UnknownCultureError{Name: name, Err: err}
}
