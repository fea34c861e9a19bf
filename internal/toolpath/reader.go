// Package toolpath turns the host's flat instruction stream into the
// canonical contour/operation model.
//
// The package implements the first two pipeline stages: a normalizing
// reader over raw host instructions, and a stateful reconstructor that
// groups consecutive cutting moves into contours and isolates discrete
// operations such as drilling.
package toolpath

import (
	"fmt"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

// Instruction is the raw host handoff for one motion or operation step.
// Coordinates are modal: a missing axis keeps the previous endpoint's
// value, matching the conventions of the CAM systems that feed us.
type Instruction struct {
	Kind string   `json:"kind"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
	Z    *float64 `json:"z,omitempty"`
	I    *float64 `json:"i,omitempty"`
	J    *float64 `json:"j,omitempty"`

	// R is the drill retract height.
	R *float64 `json:"r,omitempty"`

	Tool model.ToolRef `json:"tool,omitempty"`
}

// kindAliases maps accepted instruction spellings to canonical kinds.
// The G-word aliases cover hosts that hand over raw post words.
var kindAliases = map[string]model.Kind{
	"rapid":   model.KindRapid,
	"linear":  model.KindLinear,
	"arc_cw":  model.KindArcCW,
	"arc_ccw": model.KindArcCCW,
	"drill":   model.KindDrill,
	"G0":      model.KindRapid,
	"G00":     model.KindRapid,
	"G1":      model.KindLinear,
	"G01":     model.KindLinear,
	"G2":      model.KindArcCW,
	"G02":     model.KindArcCW,
	"G3":      model.KindArcCCW,
	"G03":     model.KindArcCCW,
	"G81":     model.KindDrill,
	"G82":     model.KindDrill,
	"G83":     model.KindDrill,
}

// Read normalizes the host's ordered instructions into motion records.
// Unsupported instruction kinds are dropped with a warning; the pass is
// otherwise read-only. Record order equals instruction order.
func Read(instrs []Instruction) ([]model.MotionRecord, []model.Warning) {
	records := make([]model.MotionRecord, 0, len(instrs))
	var warnings []model.Warning

	var pos model.Vec3
	for idx, in := range instrs {
		kind, ok := kindAliases[in.Kind]
		if !ok {
			warnings = append(warnings, model.Warning{
				Code:    model.WarnUnsupportedInstruction,
				Message: fmt.Sprintf("instruction kind %q is not supported and was dropped", in.Kind),
				Index:   idx,
			})
			continue
		}

		end := pos
		if in.X != nil {
			end.X = *in.X
		}
		if in.Y != nil {
			end.Y = *in.Y
		}
		if in.Z != nil {
			end.Z = *in.Z
		}

		rec := model.MotionRecord{
			Kind: kind,
			End:  end,
			Tool: in.Tool,
		}
		if kind == model.KindArcCW || kind == model.KindArcCCW {
			if in.I != nil {
				rec.I = *in.I
			}
			if in.J != nil {
				rec.J = *in.J
			}
		}
		if kind == model.KindDrill && in.R != nil {
			rec.Retract = *in.R
		}

		records = append(records, rec)
		pos = end
	}
	return records, warnings
}
