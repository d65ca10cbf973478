package shared

import "fmt"

var (
	// Store errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrConflict      = fmt.Errorf("row version changed since read")
	ErrWrongState    = fmt.Errorf("operation not allowed in current state")
	ErrHasDependents = fmt.Errorf("dependent records exist")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
