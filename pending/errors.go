package pending

import "fmt"

// StoreError wraps a store failure with the operation and path involved.
// The underlying error stays in the chain for errors.Is/errors.As.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("pending %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("pending %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrapErr classifies a store failure; returns nil if err is nil.
func wrapErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Path: path, Err: err}
}
