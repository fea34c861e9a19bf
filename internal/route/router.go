// Package route classifies tool references into the downstream output
// format. Routing is a total, deterministic function of the (numeric id,
// symbolic name) pair: identical input always yields the identical
// decision, and the decision is computed exactly once per contour or
// operation, never recomputed by a serializer.
package route

import (
	"fmt"
	"strings"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

// Range is an inclusive numeric tool-id interval.
type Range struct {
	Lo int `yaml:"lo"`
	Hi int `yaml:"hi"`
}

func (r Range) contains(n int) bool { return n >= r.Lo && n <= r.Hi }

// Rules holds the routing table. Rule precedence is fixed, first match
// wins:
//
//  1. symbolic name with a macro-designating prefix → MacroFormat
//  2. numeric id in a macro range → MacroFormat
//  3. numeric id in a motion range → MotionFormat
//  4. otherwise MacroFormat, with a warning that the id is unknown
//
// Ranges must not overlap by design; should a table amendment introduce
// overlap anyway, rule order is the tie-break.
type Rules struct {
	MacroPrefixes []string `yaml:"macro_prefixes"`
	MacroRanges   []Range  `yaml:"macro_ranges"`
	MotionRanges  []Range  `yaml:"motion_ranges"`
}

// DefaultRules returns the stock HOMAG routing table.
func DefaultRules() Rules {
	return Rules{
		MacroPrefixes: []string{"WW"},
		MacroRanges:   []Range{{Lo: 60, Hi: 75}, {Lo: 400, Hi: 500}},
		MotionRanges:  []Range{{Lo: 500, Hi: 600}},
	}
}

// Route decides the output format for one tool reference. The returned
// warning is non-nil only when rule 4 fired.
func (r Rules) Route(tool model.ToolRef) (model.Target, *model.Warning) {
	for _, prefix := range r.MacroPrefixes {
		if prefix != "" && strings.HasPrefix(tool.Name(), prefix) {
			return model.MacroFormat, nil
		}
	}

	if id, ok := tool.Number(); ok {
		for _, rng := range r.MacroRanges {
			if rng.contains(id) {
				return model.MacroFormat, nil
			}
		}
		for _, rng := range r.MotionRanges {
			if rng.contains(id) {
				return model.MotionFormat, nil
			}
		}
	}

	return model.MacroFormat, &model.Warning{
		Code:    model.WarnToolOutOfRange,
		Message: fmt.Sprintf("tool %s is outside every known routing range, defaulting to macro format", tool),
		Index:   -1,
		Tool:    tool,
	}
}

// Annotate routes every contour and operation in place. Contour-bound
// milling operations inherit their contour's decision so a contour and
// its operation can never land in different artifacts.
func Annotate(contours []model.Contour, operations []model.Operation, rules Rules) []model.Warning {
	var warnings []model.Warning

	byContour := make(map[int]model.Target, len(contours))
	for i := range contours {
		target, warn := rules.Route(contours[i].Tool)
		contours[i].Target = target
		byContour[contours[i].ID] = target
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	for i := range operations {
		op := &operations[i]
		if op.ContourID != 0 {
			if target, ok := byContour[op.ContourID]; ok {
				op.Target = target
				continue
			}
		}
		target, warn := rules.Route(op.Tool)
		op.Target = target
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	return warnings
}
