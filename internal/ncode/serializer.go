// Package ncode renders MotionFormat contours and operations as plain
// motion statements, one per element, using the raw (unoffset) view of
// the geometry. The motion-code format carries no header and no offset
// block: coordinates leave exactly as they arrived, in original units.
package ncode

import (
	"strconv"
	"strings"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

// Serializer renders motion-code artifacts.
type Serializer struct {
	precision int
}

// New creates a Serializer. A zero precision falls back to 3.
func New(precision int) *Serializer {
	if precision <= 0 {
		precision = 3
	}
	return &Serializer{precision: precision}
}

// Serialize composes the motion-code artifact for the given raw-view
// contours and operations, both already filtered to MotionFormat targets.
// Statement order equals model order; no stage reorders by tool or type.
func (s *Serializer) Serialize(contours []model.Contour, operations []model.Operation) []string {
	var out []string
	for _, c := range contours {
		for _, elem := range c.Elements {
			out = append(out, s.statement(elem))
		}
	}
	for _, op := range operations {
		if op.Type != model.OpDrill {
			continue
		}
		out = append(out, s.drill(op))
	}
	return out
}

func (s *Serializer) statement(elem model.Element) string {
	var b strings.Builder
	switch {
	case elem.Kind == model.ElementArc && elem.Direction == model.ArcCW:
		b.WriteString("G2")
	case elem.Kind == model.ElementArc:
		b.WriteString("G3")
	case elem.FromRapid:
		b.WriteString("G0")
	default:
		b.WriteString("G1")
	}
	s.word(&b, "X", elem.End.X)
	s.word(&b, "Y", elem.End.Y)
	s.word(&b, "Z", elem.End.Z)
	if elem.Kind == model.ElementArc {
		// I and J stay relative to the element's start point.
		s.word(&b, "I", elem.I)
		s.word(&b, "J", elem.J)
	}
	return b.String()
}

func (s *Serializer) drill(op model.Operation) string {
	var b strings.Builder
	b.WriteString("G81")
	s.word(&b, "X", op.Position.X)
	s.word(&b, "Y", op.Position.Y)
	s.word(&b, "Z", -op.Depth)
	return b.String()
}

func (s *Serializer) word(b *strings.Builder, letter string, v float64) {
	if v == 0 {
		v = 0
	}
	b.WriteByte(' ')
	b.WriteString(letter)
	b.WriteString(strconv.FormatFloat(v, 'f', s.precision, 64))
}
