package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported indicates no loader accepts the file extension.
	ErrUnsupported = errors.New("unsupported data file format")
	// ErrEmpty indicates a workbook without any sheet.
	ErrEmpty = errors.New("no sheets in workbook")
)

// DecodeError reports a file that could not be decoded.
type DecodeError struct {
	Path   string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
