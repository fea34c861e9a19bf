package model

import (
	"encoding/json"
	"fmt"
)

// ToolRef identifies the tool a record or operation cuts with. The host
// hands over a numeric id, a symbolic name, or both; routing consumes the
// pair as one value. The zero ToolRef means "no tool".
type ToolRef struct {
	number  int
	name    string
	numeric bool
}

// NumericTool returns a ToolRef carrying only a tool number.
func NumericTool(number int) ToolRef {
	return ToolRef{number: number, numeric: true}
}

// SymbolicTool returns a ToolRef carrying only a symbolic name.
func SymbolicTool(name string) ToolRef {
	return ToolRef{name: name}
}

// NamedTool returns a ToolRef carrying both a number and a name.
func NamedTool(number int, name string) ToolRef {
	return ToolRef{number: number, name: name, numeric: true}
}

// Number returns the numeric id and whether one is present.
func (t ToolRef) Number() (int, bool) { return t.number, t.numeric }

// Name returns the symbolic name, empty if none.
func (t ToolRef) Name() string { return t.name }

// IsZero reports whether the reference carries neither id nor name.
func (t ToolRef) IsZero() bool { return !t.numeric && t.name == "" }

// WithName returns a copy of t carrying the given symbolic name.
// Used by tool-table enrichment; an existing name is never overwritten.
func (t ToolRef) WithName(name string) ToolRef {
	if t.name == "" {
		t.name = name
	}
	return t
}

// String renders the reference for logs and reports.
func (t ToolRef) String() string {
	switch {
	case t.numeric && t.name != "":
		return fmt.Sprintf("T%d (%s)", t.number, t.name)
	case t.numeric:
		return fmt.Sprintf("T%d", t.number)
	case t.name != "":
		return t.name
	}
	return "T?"
}

type toolRefJSON struct {
	Number *int   `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t ToolRef) MarshalJSON() ([]byte, error) {
	var out toolRefJSON
	if t.numeric {
		n := t.number
		out.Number = &n
	}
	out.Name = t.name
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ToolRef) UnmarshalJSON(data []byte) error {
	var in toolRefJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("tool ref: %w", err)
	}
	*t = ToolRef{name: in.Name}
	if in.Number != nil {
		t.number = *in.Number
		t.numeric = true
	}
	return nil
}

// Target selects which output format receives an operation's geometry.
type Target string

const (
	// MacroFormat routes to the structured machine-macro artifact.
	MacroFormat Target = "macro"

	// MotionFormat routes to the plain motion-code artifact.
	MotionFormat Target = "motion"
)
