package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrInvalidInput ErrorType = iota
	ErrMetadata
	ErrTemplate
	ErrLocalization
	ErrDistribution
	ErrPackaging
	ErrSigning
	ErrFileOp
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrMetadata:
		return "Metadata"
	case ErrTemplate:
		return "Template"
	case ErrLocalization:
		return "Localization"
	case ErrDistribution:
		return "Distribution"
	case ErrPackaging:
		return "Packaging"
	case ErrSigning:
		return "Signing"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// RepackError represents an error during a repackaging run
type RepackError struct {
	Type ErrorType
	Path string
	Err  error
}

// Error implements the error interface
func (e *RepackError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *RepackError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a RepackError of the given type, or nil when err is nil.
// A RepackError is returned unchanged.
func Wrap(t ErrorType, path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RepackError); ok {
		return err
	}
	return &RepackError{Type: t, Path: path, Err: err}
}
