package model

import "fmt"

// WarningCode categorizes non-fatal data-quality findings.
type WarningCode string

const (
	// WarnUnsupportedInstruction marks an instruction kind the reader
	// dropped.
	WarnUnsupportedInstruction WarningCode = "UNSUPPORTED_INSTRUCTION"

	// WarnArcMismatch marks an arc whose supplied endpoint disagrees with
	// the computed center beyond tolerance.
	WarnArcMismatch WarningCode = "ARC_ENDPOINT_MISMATCH"

	// WarnToolOutOfRange marks a tool id outside every known routing
	// range; such tools default to the macro format.
	WarnToolOutOfRange WarningCode = "TOOL_OUT_OF_RANGE"
)

// Warning is a non-fatal finding collected while building the canonical
// model. Warnings are ordered by discovery but never influence artifact
// ordering.
type Warning struct {
	Code    WarningCode
	Message string

	// Index is the zero-based position of the offending instruction in
	// the input stream, -1 when not tied to one instruction.
	Index int

	// Tool is the tool reference involved, zero when not tool-related.
	Tool ToolRef
}

func (w Warning) String() string {
	if w.Index >= 0 {
		return fmt.Sprintf("%s: %s (instruction %d)", w.Code, w.Message, w.Index)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
