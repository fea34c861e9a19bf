package model

import (
	"errors"
	"fmt"
)

// StructuralError is fatal to the current job: the instruction stream
// cannot be reconstructed into a usable canonical model.
type StructuralError struct {
	// Code identifies the error category.
	Code StructuralErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the offending instruction position, -1 when the error
	// concerns the stream as a whole.
	Index int
}

// StructuralErrorCode categorizes structural errors.
type StructuralErrorCode string

const (
	// ErrCodeDrillWithoutTool indicates a drill record with no tool
	// reference.
	ErrCodeDrillWithoutTool StructuralErrorCode = "DRILL_WITHOUT_TOOL"

	// ErrCodeEmptyJob indicates a job with zero contours and zero
	// operations after reconstruction.
	ErrCodeEmptyJob StructuralErrorCode = "EMPTY_JOB"
)

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (instruction %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// NewDrillWithoutToolError creates a StructuralError for a drill record
// missing its tool reference.
func NewDrillWithoutToolError(index int) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeDrillWithoutTool,
		Message: "drill record has no tool reference",
		Index:   index,
	}
}

// NewEmptyJobError creates a StructuralError for a job that produced
// nothing to machine.
func NewEmptyJobError() *StructuralError {
	return &StructuralError{
		Code:    ErrCodeEmptyJob,
		Message: "job has zero contours and zero operations",
		Index:   -1,
	}
}
