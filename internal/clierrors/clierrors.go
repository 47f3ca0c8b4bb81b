package clierrors

import (
	"fmt"
)

// Process exit codes for the command line tools
const (
	ExitOK       int = 0
	ExitRejected int = 1
	ExitFailed   int = 2
	ExitErrored  int = 201
)

// Carries an exit code along with an error so the app can exit correctly
type ExitError struct {
	Err  error
	Code int
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d", e.Code)
	}

	return fmt.Sprintf("%d: %s", e.Code, e.Err.Error())
}

func (e ExitError) Unwrap() error {
	return e.Err
}

// Wrap an error with an exit code
func ExitErrorWrap(code int, err error) error {
	return ExitError{Code: code, Err: err}
}
