package toolpath

import (
	"math"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

// moveEpsilon is the displacement below which a move is treated as no
// motion at all and dropped from contour membership.
const moveEpsilon = 0.001

// Config controls contour reconstruction.
type Config struct {
	// SafeHeight is the Z above which a rapid is a retract: it closes
	// the open contour and no new one opens until the next cutting move.
	SafeHeight float64

	// IncludeRapids folds every below-safe-height rapid into the contour
	// as a linear element. When unset, rapid chains before the first and
	// after the last cutting move of a contour are skipped; only rapids
	// bridging two cutting moves become linear elements.
	IncludeRapids bool
}

// scanner is the reconstruction state machine. It has two states,
// open-contour and no-open-contour; the rules in step drive the
// transitions and stream exhaustion flushes a trailing open contour.
type scanner struct {
	cfg Config

	pos  model.Vec3
	tool model.ToolRef
	open *model.Contour

	nextID     int
	contours   []model.Contour
	operations []model.Operation
}

// Reconstruct groups motion records into contours and discrete operations.
// Record order is preserved: contours and operations appear in the output
// in the order the stream established them.
func Reconstruct(records []model.MotionRecord, cfg Config) ([]model.Contour, []model.Operation, error) {
	s := &scanner{cfg: cfg, nextID: 1}
	for idx, rec := range records {
		if err := s.step(idx, rec); err != nil {
			return nil, nil, err
		}
	}
	s.closeContour()
	return s.contours, s.operations, nil
}

func (s *scanner) step(idx int, rec model.MotionRecord) error {
	switch rec.Kind {
	case model.KindDrill:
		if rec.Tool.IsZero() {
			return model.NewDrillWithoutToolError(idx)
		}
		s.closeContour()
		s.operations = append(s.operations, model.Operation{
			Type:     model.OpDrill,
			Tool:     rec.Tool,
			Position: rec.End,
			Depth:    drillDepth(rec),
		})
		s.pos = rec.End

	case model.KindRapid:
		if rec.End.Z > s.cfg.SafeHeight {
			s.closeContour()
			s.pos = rec.End
			return nil
		}
		if s.zeroMove(rec.End) {
			s.pos = rec.End
			return nil
		}
		// A rapid below safe height joins the contour only when the
		// caller asked for rapids, or when it bridges cutting moves
		// inside an already-open contour.
		if s.cfg.IncludeRapids || s.open != nil {
			s.appendCut(rec, true)
		}
		s.pos = rec.End

	case model.KindLinear, model.KindArcCW, model.KindArcCCW:
		if rec.Kind == model.KindLinear && s.zeroMove(rec.End) {
			s.pos = rec.End
			return nil
		}
		s.appendCut(rec, false)
		s.pos = rec.End
	}
	return nil
}

// appendCut adds a cutting element to the open contour, opening one when
// needed and closing first on a tool change.
func (s *scanner) appendCut(rec model.MotionRecord, fromRapid bool) {
	if s.open != nil && !rec.Tool.IsZero() {
		if s.open.Tool.IsZero() {
			// Rapids carry no tool; the first cutting move establishes
			// the contour's tool context.
			s.open.Tool = rec.Tool
		} else if rec.Tool != s.open.Tool {
			s.closeContour()
		}
	}
	if s.open == nil {
		s.open = &model.Contour{
			ID:    s.nextID,
			Tool:  rec.Tool,
			Start: s.pos,
		}
		s.nextID++
	}

	elem := model.Element{
		Kind:      model.ElementLine,
		Start:     s.pos,
		End:       rec.End,
		FromRapid: fromRapid,
	}
	switch rec.Kind {
	case model.KindArcCW:
		elem.Kind = model.ElementArc
		elem.Direction = model.ArcCW
		elem.I, elem.J = rec.I, rec.J
	case model.KindArcCCW:
		elem.Kind = model.ElementArc
		elem.Direction = model.ArcCCW
		elem.I, elem.J = rec.I, rec.J
	}
	s.open.Elements = append(s.open.Elements, elem)
}

// closeContour flushes the open contour and records its milling operation.
// Rapids that ended up after the last cutting move are positioning, not
// cutting: they are trimmed here unless rapids were requested. Contours
// left with no elements are discarded.
func (s *scanner) closeContour() {
	if s.open == nil {
		return
	}
	c := *s.open
	s.open = nil
	if !s.cfg.IncludeRapids {
		for len(c.Elements) > 0 && c.Elements[len(c.Elements)-1].FromRapid {
			c.Elements = c.Elements[:len(c.Elements)-1]
		}
	}
	if len(c.Elements) == 0 {
		return
	}
	s.contours = append(s.contours, c)
	s.operations = append(s.operations, model.Operation{
		Type:      model.OpContourMill,
		Tool:      c.Tool,
		ContourID: c.ID,
	})
}

func (s *scanner) zeroMove(end model.Vec3) bool {
	return math.Abs(end.X-s.pos.X) < moveEpsilon &&
		math.Abs(end.Y-s.pos.Y) < moveEpsilon &&
		math.Abs(end.Z-s.pos.Z) < moveEpsilon
}

// drillDepth derives cutting depth from the drill endpoint and retract
// height: |z - r| with a retract, |z| without one.
func drillDepth(rec model.MotionRecord) float64 {
	if rec.Retract != 0 {
		return math.Abs(rec.End.Z - rec.Retract)
	}
	return math.Abs(rec.End.Z)
}
