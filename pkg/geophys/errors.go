package geophys

import "fmt"

// ErrDatasetShape indicates a malformed point dataset: a missing coordinate
// variable or an empty point dimension. Construction aborts.
type ErrDatasetShape struct {
	Reason string
}

func (e *ErrDatasetShape) Error() string {
	return fmt.Sprintf("dataset shape: %s", e.Reason)
}

// ErrReprojection indicates a coordinate transform failure. Transform
// failures are not transient and are never retried.
type ErrReprojection struct {
	FromCRS string
	ToCRS   string
	Err     error
}

func (e *ErrReprojection) Error() string {
	return fmt.Sprintf("reproject from %q to %q: %v", e.FromCRS, e.ToCRS, e.Err)
}

func (e *ErrReprojection) Unwrap() error { return e.Err }

// ErrInvalidArgument indicates mutually exclusive or malformed call
// arguments, a caller bug surfaced immediately.
type ErrInvalidArgument struct {
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// ErrUnknownVariable indicates a requested variable is absent from the
// dataset.
type ErrUnknownVariable struct {
	Name string
}

func (e *ErrUnknownVariable) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}
