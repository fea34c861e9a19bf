package model

// Vec3 is a point or offset in machine units (millimeters).
// No implicit unit conversion happens anywhere in the pipeline.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Kind identifies a motion record's instruction type.
type Kind string

const (
	KindRapid  Kind = "rapid"
	KindLinear Kind = "linear"
	KindArcCW  Kind = "arc_cw"
	KindArcCCW Kind = "arc_ccw"
	KindDrill  Kind = "drill"
)

// MotionRecord is one normalized host instruction. Immutable once read.
//
// For arc kinds, I and J are offsets from the record's start point to the
// arc center. They are never absolute coordinates.
type MotionRecord struct {
	Kind Kind    `json:"kind"`
	End  Vec3    `json:"end"`
	I    float64 `json:"i,omitempty"`
	J    float64 `json:"j,omitempty"`
	Tool ToolRef `json:"tool"`

	// Retract is the drill retract height (R word); used to derive depth.
	Retract float64 `json:"retract,omitempty"`
}

// ElementKind identifies a resolved contour element.
type ElementKind string

const (
	ElementLine ElementKind = "KL"
	ElementArc  ElementKind = "KA"
)

// ArcDirection is the rotation sense of an arc element.
type ArcDirection string

const (
	ArcCW  ArcDirection = "CW"
	ArcCCW ArcDirection = "CCW"
)

// Element is one resolved contour segment with absolute coordinates.
// Arc fields (Center, Radius, Direction) are set only for ElementArc.
type Element struct {
	Kind      ElementKind
	Start     Vec3
	End       Vec3
	Center    Vec3
	Radius    float64
	Direction ArcDirection

	// I, J are the original relative center offsets, kept for the
	// motion-code serializer which re-emits them verbatim.
	I float64
	J float64

	// FromRapid marks a line element synthesized from a rapid move.
	FromRapid bool
}

// Contour is an ordered run of elements cut with one tool without an
// intervening safe-height retract. Element order is the cut order and is
// semantically load-bearing.
type Contour struct {
	ID       int
	Tool     ToolRef
	Start    Vec3
	Elements []Element
	Target   Target
}

// OperationType identifies a discrete machining action.
type OperationType string

const (
	OpDrill       OperationType = "BohrVert"
	OpContourMill OperationType = "Konturfraesen"
	OpPocket      OperationType = "Pocket"
)

// Operation is a discrete machining action distinct from a contour.
// Drill operations carry Position and Depth; milling operations reference
// the contour they cut via ContourID.
type Operation struct {
	Type      OperationType
	Tool      ToolRef
	Position  Vec3
	Depth     float64
	ContourID int
	Target    Target
}

// BBox is an axis-aligned bounding box over the job's geometry.
type BBox struct {
	Min Vec3
	Max Vec3

	set bool
}

// IsEmpty reports whether the box has absorbed no points yet.
func (b BBox) IsEmpty() bool { return !b.set }

// Union extends the box to include p. An empty box adopts p.
func (b *BBox) Union(p Vec3) {
	if !b.set {
		b.Min, b.Max = p, p
		b.set = true
		return
	}
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// Job owns the full ordered contour and operation lists for one conversion
// run. Jobs are never shared between runs; concurrent runs get independent
// instances.
type Job struct {
	Contours   []Contour
	Operations []Operation

	// BBox is derived from the resolved geometry, never supplied.
	BBox BBox

	// Offset is the active fixture's coordinate-system offset. It applies
	// only to the macro-format view of the geometry.
	Offset Vec3

	// Workpiece describes the stock the job cuts.
	Workpiece Workpiece

	// SafeHeight is the retract height above which a rapid closes the
	// open contour.
	SafeHeight float64
}

// Workpiece holds stock dimensions and extents for the macro header.
type Workpiece struct {
	Length    float64 `json:"length" yaml:"length"`
	Width     float64 `json:"width" yaml:"width"`
	Thickness float64 `json:"thickness" yaml:"thickness"`

	// Stock extents: left/front offsets and right/back oversize.
	LeftOffset    float64 `json:"left_offset" yaml:"left_offset"`
	FrontOffset   float64 `json:"front_offset" yaml:"front_offset"`
	RightOversize float64 `json:"right_oversize" yaml:"right_oversize"`
	BackOversize  float64 `json:"back_oversize" yaml:"back_oversize"`

	// Program offsets position the workpiece on the machine.
	OffsetX float64 `json:"offset_x" yaml:"offset_x"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y"`
	OffsetZ float64 `json:"offset_z" yaml:"offset_z"`
}
