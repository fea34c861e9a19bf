// Package mpr renders the canonical model into the woodWOP MPR 4.0 macro
// format: a header block, a variables block, contour geometry blocks, the
// workpiece block, and one block per routed operation, in that strict
// order. The composed text is a line sequence; line terminators are the
// writer's responsibility. Blank-line separators between blocks are part
// of the grammar and are emitted exactly once.
//
// Coordinates come exclusively from the offset view of the geometry; the
// raw view belongs to the motion-code format and must never leak in here.
package mpr

import (
	"fmt"
	"math"
	"time"

	"github.com/cebdan/woodwop-post-processor/internal/geometry"
	"github.com/cebdan/woodwop-post-processor/internal/model"
)

// Options configures one serialization run.
type Options struct {
	Workpiece  model.Workpiece
	SafeHeight float64

	// Precision is the coordinate decimal-place count; the original
	// format works at 3.
	Precision int

	// Comments enables KM comment lines and Kommentar blocks.
	Comments bool

	// GeneratedAt stamps the comment block. The zero time omits the
	// stamp so artifacts stay byte-reproducible.
	GeneratedAt time.Time

	// Fixture names the active coordinate system (e.g. "G54"); empty
	// when no fixture is declared.
	Fixture string

	// Offset is the declared fixture offset, echoed into the comment
	// block. The geometry handed to Serialize is already translated.
	Offset model.Vec3
}

// Serializer renders macro-format artifacts.
type Serializer struct {
	opts Options
}

// New creates a Serializer. A zero precision falls back to 3.
func New(opts Options) *Serializer {
	if opts.Precision <= 0 {
		opts.Precision = 3
	}
	return &Serializer{opts: opts}
}

// Serialize composes the complete macro artifact for the given offset-view
// contours and operations. Both slices must already be filtered to
// MacroFormat targets; order is preserved as given.
func (s *Serializer) Serialize(contours []model.Contour, operations []model.Operation) []string {
	var out []string
	out = append(out, s.header()...)
	out = append(out, s.variables()...)
	for _, c := range contours {
		out = append(out, s.contour(c)...)
	}
	out = append(out, s.workpieceBlock()...)

	// The ORI counter starts at 1 for the header comment slot whether or
	// not that block is printed, so operation numbering never shifts with
	// the comment setting.
	ori := 1
	if s.opts.Comments {
		out = append(out, s.commentBlock()...)
	}
	for _, op := range operations {
		switch op.Type {
		case model.OpDrill:
			out = append(out, s.drillBlock(op)...)
		case model.OpContourMill:
			out = append(out, s.millBlocks(op, contours, &ori)...)
		case model.OpPocket:
			out = append(out, s.pocketBlock(op)...)
		}
	}

	out = append(out, "!")
	return out
}

// header emits the fixed [H key list. UF and ZS reference the z_safe
// variable declared in the [001 block; the underscore variables carry the
// workpiece and stock dimensions at six decimals.
func (s *Serializer) header() []string {
	wp := s.opts.Workpiece
	out := []string{
		`[H`,
		`VERSION="4.0 Alpha"`,
		`WW="9.0.152"`,
		`OP="1"`,
		`WRK2="0"`,
		`SCHN="0"`,
		`CVR="0"`,
		`POI="0"`,
		`HSP="0"`,
		`O2="0"`,
		`O4="0"`,
		`O3="0"`,
		`O5="0"`,
		`SR="0"`,
		`FM="1"`,
		`ML="2000"`,
		`UF="z_safe"`,
		`ZS="z_safe"`,
		`DN="STANDARD"`,
		`DST="0"`,
		`GP="0"`,
		`GY="0"`,
		`GXY="0"`,
		`NP="1"`,
		`NE="0"`,
		`NA="0"`,
		`BFS="0"`,
		`US="0"`,
		`CB="0"`,
		`UP="0"`,
		`DW="0"`,
		`MAT="HOMAG"`,
		`HP_A_O="STANDARD"`,
		`OVD_U="1"`,
		`OVD="0"`,
		`OHD_U="0"`,
		`OHD="2"`,
		`OOMD_U="0"`,
		`EWL="1"`,
		`INCH="0"`,
		`VIEW="NOMIRROR"`,
		`ANZ="1"`,
		`BES="0"`,
		`ENT="0"`,
		`MATERIAL=""`,
		`CUSTOMER=""`,
		`ORDER=""`,
		`ARTICLE=""`,
		`PARTID=""`,
		`PARTTYPE=""`,
		`MPRCOUNT="1"`,
		`MPRNUMBER="1"`,
		`INFO1=""`,
		`INFO2=""`,
		`INFO3=""`,
		`INFO4=""`,
		`INFO5=""`,
	}
	out = append(out,
		"_BSX="+fmt6(wp.Length),
		"_BSY="+fmt6(wp.Width),
		"_BSZ="+fmt6(wp.Thickness),
		"_FNX="+fmt6(wp.LeftOffset),
		"_FNY="+fmt6(wp.FrontOffset),
		"_RNX="+fmt6(wp.OffsetX),
		"_RNY="+fmt6(wp.OffsetY),
		"_RNZ="+fmt6(wp.OffsetZ),
		"_RX="+fmt6(wp.LeftOffset+wp.Length+wp.RightOversize),
		"_RY="+fmt6(wp.FrontOffset+wp.Width+wp.BackOversize),
		"",
	)
	return out
}

// variables emits the [001 block at working precision. The variable names
// are load-bearing: the workpiece block and the header's UF/ZS refer to
// them symbolically.
func (s *Serializer) variables() []string {
	wp := s.opts.Workpiece
	out := []string{"[001"}
	add := func(name string, value float64, comment string) {
		out = append(out, fmt.Sprintf("%s=%q", name, s.fmt(value)))
		if s.opts.Comments {
			out = append(out, fmt.Sprintf("KM=%q", comment))
		}
	}
	add("l", wp.Length, "length in X")
	add("w", wp.Width, "width in Y")
	add("th", wp.Thickness, "thickness in Z")
	add("x", wp.OffsetX, "offset programs in x")
	add("y", wp.OffsetY, "offset programs in y")
	add("z", wp.OffsetZ, "z offset")
	add("l_off", wp.LeftOffset, "left offset")
	add("f_off", wp.FrontOffset, "front offset")
	add("r_oz", wp.RightOversize, "right oversize")
	add("b_oz", wp.BackOversize, "back oversize")
	add("z_safe", s.opts.SafeHeight, "clearance height")
	out = append(out, "")
	return out
}

// contour emits one ]N geometry block: the $E0 start point followed by
// one $E record per element. Element order is the cut order.
func (s *Serializer) contour(c model.Contour) []string {
	out := []string{
		fmt.Sprintf("]%d", c.ID),
		"$E0",
		"KP",
		"X=" + s.fmt(c.Start.X),
		"Y=" + s.fmt(c.Start.Y),
		"Z=" + s.fmt(c.Start.Z),
		"KO=00",
		".X=0.000000",
		".Y=0.000000",
		".Z=0.000000",
		".KO=00",
		"",
	}
	for i, elem := range c.Elements {
		out = append(out, fmt.Sprintf("$E%d", i+1))
		if elem.Kind == model.ElementArc {
			out = append(out, s.arcElement(elem)...)
		} else {
			out = append(out, s.lineElement(elem)...)
		}
		out = append(out, "")
	}
	return out
}

func (s *Serializer) lineElement(elem model.Element) []string {
	dx := elem.End.X - elem.Start.X
	dy := elem.End.Y - elem.Start.Y
	dz := elem.End.Z - elem.Start.Z

	var wi float64
	if math.Abs(dx) > 0.001 || math.Abs(dy) > 0.001 {
		wi = math.Atan2(dy, dx)
	}
	var wz float64
	if xy := math.Hypot(dx, dy); xy > 0.001 {
		wz = math.Atan2(dz, xy)
	}

	return []string{
		"KL",
		"X=" + s.fmt(elem.End.X),
		"Y=" + s.fmt(elem.End.Y),
		"Z=" + s.fmt(elem.End.Z),
		".X=" + s.fmt(elem.End.X),
		".Y=" + s.fmt(elem.End.Y),
		".Z=" + s.fmt(elem.End.Z),
		".WI=" + s.fmt(wi),
		".WZ=" + s.fmt(wz),
	}
}

// arcElement emits a KA record. DS encodes rotation and span: 0 CW small,
// 1 CCW small, 2 CW large, 3 CCW large, where small means a sweep of at
// most half a turn.
func (s *Serializer) arcElement(elem model.Element) []string {
	start, end := geometry.Angles(elem)
	sweep := math.Abs(end - start)
	small := sweep <= math.Pi

	ds := 0
	if elem.Direction == model.ArcCW {
		if !small {
			ds = 2
		}
	} else {
		ds = 1
		if !small {
			ds = 3
		}
	}

	radius := s.arcRadius(elem, sweep)

	return []string{
		"KA",
		"X=" + s.fmt(elem.End.X),
		"Y=" + s.fmt(elem.End.Y),
		"Z=" + s.fmt(elem.End.Z),
		fmt.Sprintf("DS=%d", ds),
		"R=" + s.fmt(radius),
		".X=" + s.fmt(elem.End.X),
		".Y=" + s.fmt(elem.End.Y),
		".Z=" + s.fmt(elem.End.Z),
		".I=" + s.fmt(elem.Center.X),
		".J=" + s.fmt(elem.Center.Y),
		fmt.Sprintf(".DS=%d", ds),
		".R=" + s.fmt(radius),
		".WI=" + s.fmt(start),
		".WO=" + s.fmt(end),
		".WAZ=" + s.fmt(0),
	}
}

// arcRadius reconciles the declared radius with the measured start and
// end radii, and keeps half-turn arcs geometrically possible: the radius
// of a 180-degree arc can never be smaller than half its chord.
func (s *Serializer) arcRadius(elem model.Element, sweep float64) float64 {
	rStart := math.Hypot(elem.Start.X-elem.Center.X, elem.Start.Y-elem.Center.Y)
	rEnd := math.Hypot(elem.End.X-elem.Center.X, elem.End.Y-elem.Center.Y)

	radius := elem.Radius
	if radius <= 0.001 {
		radius = (rStart + rEnd) / 2
	}
	if math.Abs(radius-rStart) > 0.001 || math.Abs(radius-rEnd) > 0.001 {
		radius = (rStart + rEnd) / 2
	}

	if math.Abs(sweep-math.Pi) < 0.001 {
		chord := math.Hypot(elem.End.X-elem.Start.X, elem.End.Y-elem.Start.Y)
		if min := chord/2 + 0.001; radius < min {
			radius = min
		}
	}
	return radius
}

// workpieceBlock emits the <100 block. Values are symbolic references to
// the [001 variables, not literals.
func (s *Serializer) workpieceBlock() []string {
	return []string{
		`<100 \WerkStck\`,
		`LA="l"`,
		`BR="w"`,
		`DI="th"`,
		`FNX="l_off"`,
		`FNY="f_off"`,
		`RNX="x"`,
		`RNY="y"`,
		`RNZ="z"`,
		`RL="l_off+l+r_oz"`,
		`RB="f_off+w+b_oz"`,
		"",
	}
}

func (s *Serializer) commentBlock() []string {
	out := []string{
		`<101 \Kommentar\`,
		`KM="Generated by woodwop-post-processor"`,
	}
	if !s.opts.GeneratedAt.IsZero() {
		out = append(out, fmt.Sprintf("KM=%q", "Date: "+s.opts.GeneratedAt.Format("2006-01-02 15:04:05")))
	}
	if s.opts.Fixture != "" {
		out = append(out, fmt.Sprintf(`KM="Coordinate System: %s (offset: X=%s, Y=%s)"`,
			s.opts.Fixture, s.fmt(s.opts.Offset.X), s.fmt(s.opts.Offset.Y)))
	}
	out = append(out,
		`KAT="Kommentar"`,
		`MNM="Kommentar"`,
		`ORI="1"`,
		"",
	)
	return out
}

// drillBlock emits a <102 vertical drilling block. XA/YA are already in
// the offset view.
func (s *Serializer) drillBlock(op model.Operation) []string {
	tno := 1
	if n, ok := op.Tool.Number(); ok {
		tno = n
	}
	return []string{
		`<102 \BohrVert\`,
		fmt.Sprintf("XA=%q", s.fmt(op.Position.X)),
		fmt.Sprintf("YA=%q", s.fmt(op.Position.Y)),
		fmt.Sprintf("TI=%q", s.fmt(op.Depth)),
		fmt.Sprintf(`TNO="%d"`, tno),
		`BM="SS"`,
		"",
	}
}

// millBlocks emits the Kommentar/Konturfraesen pair for one contour
// milling operation. The ORI counter runs across all comment-carrying
// blocks in the artifact.
func (s *Serializer) millBlocks(op model.Operation, contours []model.Contour, ori *int) []string {
	var contour *model.Contour
	for i := range contours {
		if contours[i].ID == op.ContourID {
			contour = &contours[i]
			break
		}
	}
	lastElement := 0
	if contour != nil {
		lastElement = len(contour.Elements)
	}

	// The operation's Kommentar pair is part of the operation record and
	// is emitted regardless of the comment setting.
	*ori++
	out := []string{
		`<101 \Kommentar\`,
		`KAT="Fräsen"`,
		`MNM="Vertical trimming"`,
		fmt.Sprintf(`ORI="%d"`, *ori),
		"",
	}

	tno := 1
	if n, ok := op.Tool.Number(); ok {
		tno = n
	}
	rk := s.toolCompensation(contour)

	*ori++
	out = append(out,
		`<105 \Konturfraesen\`,
		fmt.Sprintf(`EA="%d:0"`, op.ContourID),
		`MDA="SEN"`,
		`STUFEN="0"`,
		`BL="0"`,
		`WZS="1"`,
		`OSZI="0"`,
		`OSZVS="0"`,
		`ZSTART="0"`,
		`ANZZST="0"`,
		fmt.Sprintf("RK=%q", rk),
		fmt.Sprintf(`EE="%d:%d"`, op.ContourID, lastElement),
		`MDE="SEN_AB"`,
		`EM="0"`,
		`RI="1"`,
		fmt.Sprintf(`TNO="%d"`, tno),
		`SM="0"`,
		`S_="STANDARD"`,
		`F_="5"`,
		`AB="0"`,
		`AF="0"`,
		`AW="0"`,
		`BW="0"`,
		`VLS="0"`,
		`VLE="0"`,
		`ZA="@0"`,
		`SC="0"`,
		`TDM="0"`,
		`HP="0"`,
		`SP="0"`,
		`YVE="0"`,
		`WW="1,2,3,401,402,403"`,
		`ASG="2"`,
		`HP_A_O="STANDARD"`,
		`KG="0"`,
		`RP="STANDARD"`,
		`RSEL="0"`,
		`RWID="0"`,
		`KAT="Fräsen"`,
		`MNM="Vertical trimming"`,
		fmt.Sprintf(`ORI="%d"`, *ori),
		`MX="0"`,
		`MY="0"`,
		`MZ="0"`,
		`MXF="1"`,
		`MYF="1"`,
		`MZF="1"`,
		`SYA="0"`,
		`SYV="0"`,
		"",
	)
	return out
}

func (s *Serializer) pocketBlock(op model.Operation) []string {
	tno := 1
	if n, ok := op.Tool.Number(); ok {
		tno = n
	}
	return []string{
		`<103 \Pocket\`,
		fmt.Sprintf(`EA="%d:0"`, op.ContourID),
		fmt.Sprintf(`TNO="%d"`, tno),
		"",
	}
}

// toolCompensation picks the RK reference side from the contour's mean X
// position relative to the workpiece, with a tenth of the workpiece
// length as the left/right threshold.
func (s *Serializer) toolCompensation(contour *model.Contour) string {
	if contour == nil || len(contour.Elements) == 0 {
		return "NoWRK"
	}
	var sum float64
	for _, elem := range contour.Elements {
		sum += elem.End.X
	}
	avg := sum / float64(len(contour.Elements))

	wp := s.opts.Workpiece
	left := wp.OffsetX + wp.LeftOffset
	right := left + wp.Length
	threshold := wp.Length * 0.1

	switch {
	case avg < left-threshold:
		return "WRKL"
	case avg > right+threshold:
		return "WRKR"
	default:
		return "NoWRK"
	}
}

func (s *Serializer) fmt(v float64) string {
	return fmtAt(v, s.opts.Precision)
}
