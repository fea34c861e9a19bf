package geometry

import "github.com/cebdan/woodwop-post-processor/internal/model"

// The macro and motion formats consume two parallel read-only views over
// one resolved geometry. The offset view translates every X,Y by the
// fixture offset and feeds the macro serializer only; the raw view is the
// resolved geometry itself and feeds the motion-code serializer. Neither
// serializer may ever see the other's view.

// OffsetContours returns a deep copy of the contours with every X,Y
// coordinate translated by (dx, dy). With a zero offset the copy is
// coordinate-identical to the input.
func OffsetContours(contours []model.Contour, dx, dy float64) []model.Contour {
	out := make([]model.Contour, len(contours))
	for i, c := range contours {
		oc := c
		oc.Start = shift(c.Start, dx, dy)
		oc.Elements = make([]model.Element, len(c.Elements))
		for j, e := range c.Elements {
			oe := e
			oe.Start = shift(e.Start, dx, dy)
			oe.End = shift(e.End, dx, dy)
			if e.Kind == model.ElementArc {
				oe.Center = shift(e.Center, dx, dy)
			}
			oc.Elements[j] = oe
		}
		out[i] = oc
	}
	return out
}

// OffsetOperations returns a copy of the operations with drill positions
// translated by (dx, dy). Contour-bound operations carry no coordinates
// of their own and pass through unchanged.
func OffsetOperations(operations []model.Operation, dx, dy float64) []model.Operation {
	out := make([]model.Operation, len(operations))
	for i, op := range operations {
		if op.Type == model.OpDrill {
			op.Position = shift(op.Position, dx, dy)
		}
		out[i] = op
	}
	return out
}

func shift(p model.Vec3, dx, dy float64) model.Vec3 {
	p.X += dx
	p.Y += dy
	return p
}
