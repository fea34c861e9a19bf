// Package geometry resolves relative arc references into the absolute
// canonical model and derives the job's bounding extents.
//
// Resolution is an eager stage: it fully materializes centers, radii and
// the bounding box before any serializer runs, so the macro header never
// needs a second pass over the contours.
package geometry

import (
	"fmt"
	"math"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

// arcTolerance is the allowed disagreement, in machine units, between the
// radius measured at the arc start and at the supplied endpoint. Beyond it
// the endpoint is still authoritative but the arc is flagged.
const arcTolerance = 0.001

// Resolve fills in absolute arc centers and radii for every contour
// element and returns the bounding box over all geometry. The supplied
// endpoint of an arc is never re-derived; a center/endpoint disagreement
// beyond tolerance produces a warning, not an error.
func Resolve(contours []model.Contour, operations []model.Operation) (model.BBox, []model.Warning) {
	var bbox model.BBox
	var warnings []model.Warning

	for ci := range contours {
		c := &contours[ci]
		bbox.Union(c.Start)
		for ei := range c.Elements {
			elem := &c.Elements[ei]
			if elem.Kind == model.ElementArc {
				if w := resolveArc(elem, c.ID, ei); w != nil {
					warnings = append(warnings, *w)
				}
				unionArc(&bbox, *elem)
			} else {
				bbox.Union(elem.End)
			}
		}
	}

	for _, op := range operations {
		if op.Type != model.OpDrill {
			continue
		}
		bbox.Union(op.Position)
		bbox.Union(model.Vec3{X: op.Position.X, Y: op.Position.Y, Z: -op.Depth})
	}

	return bbox, warnings
}

// resolveArc computes the absolute center from the element's start point
// and relative (i, j) offsets. The offsets are relative to the start
// point, never absolute coordinates.
func resolveArc(elem *model.Element, contourID, elemIdx int) *model.Warning {
	elem.Center = model.Vec3{
		X: elem.Start.X + elem.I,
		Y: elem.Start.Y + elem.J,
		Z: elem.Start.Z,
	}
	elem.Radius = math.Hypot(elem.I, elem.J)

	endRadius := math.Hypot(elem.End.X-elem.Center.X, elem.End.Y-elem.Center.Y)
	if math.Abs(endRadius-elem.Radius) > arcTolerance {
		return &model.Warning{
			Code: model.WarnArcMismatch,
			Message: fmt.Sprintf(
				"contour %d element %d: endpoint radius %.3f disagrees with center radius %.3f",
				contourID, elemIdx+1, endRadius, elem.Radius),
			Index: -1,
		}
	}
	return nil
}

// unionArc extends the box with the arc's endpoints and its axis extrema.
// An arc can bulge outside its chord, so the extrema at every quadrant
// crossing inside the swept range are included.
func unionArc(bbox *model.BBox, elem model.Element) {
	bbox.Union(elem.End)
	if elem.Radius <= arcTolerance {
		return
	}

	start, end := arcAngles(elem)
	lo, hi := start, end
	if lo > hi {
		lo, hi = hi, lo
	}
	for k := math.Ceil(lo / (math.Pi / 2)); k*(math.Pi/2) <= hi; k++ {
		a := k * (math.Pi / 2)
		bbox.Union(model.Vec3{
			X: elem.Center.X + elem.Radius*math.Cos(a),
			Y: elem.Center.Y + elem.Radius*math.Sin(a),
			Z: elem.Start.Z,
		})
	}
}

// arcAngles returns the start and end angles of the arc, with the end
// angle unwound past the start according to the rotation direction.
func arcAngles(elem model.Element) (float64, float64) {
	start := math.Atan2(elem.Start.Y-elem.Center.Y, elem.Start.X-elem.Center.X)
	end := math.Atan2(elem.End.Y-elem.Center.Y, elem.End.X-elem.Center.X)
	if elem.Direction == model.ArcCCW && end < start {
		end += 2 * math.Pi
	} else if elem.Direction == model.ArcCW && end > start {
		end -= 2 * math.Pi
	}
	return start, end
}

// SweepAngle returns the absolute swept angle of an arc element.
func SweepAngle(elem model.Element) float64 {
	start, end := arcAngles(elem)
	return math.Abs(end - start)
}

// Angles exposes the normalized start and end angles for serialization.
func Angles(elem model.Element) (start, end float64) {
	return arcAngles(elem)
}
