package toolpath

import (
	"testing"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

func f(v float64) *float64 { return &v }

func TestRead_ModalCoordinates(t *testing.T) {
	records, warnings := Read([]Instruction{
		{Kind: "linear", X: f(10), Y: f(5), Z: f(-2)},
		{Kind: "linear", X: f(20)},
	})
	if len(warnings) != 0 {
		t.Fatalf("Read() warnings = %v, want none", warnings)
	}
	if len(records) != 2 {
		t.Fatalf("Read() produced %d records, want 2", len(records))
	}

	want := model.Vec3{X: 20, Y: 5, Z: -2}
	if records[1].End != want {
		t.Errorf("second record end = %v, want %v (missing axes keep previous values)", records[1].End, want)
	}
}

func TestRead_GWordAliases(t *testing.T) {
	cases := []struct {
		in   string
		want model.Kind
	}{
		{"G0", model.KindRapid},
		{"G00", model.KindRapid},
		{"G1", model.KindLinear},
		{"G2", model.KindArcCW},
		{"G3", model.KindArcCCW},
		{"G81", model.KindDrill},
		{"G83", model.KindDrill},
		{"rapid", model.KindRapid},
		{"arc_ccw", model.KindArcCCW},
	}
	for _, tc := range cases {
		records, _ := Read([]Instruction{{Kind: tc.in}})
		if len(records) != 1 {
			t.Fatalf("Read(%q) produced %d records, want 1", tc.in, len(records))
		}
		if records[0].Kind != tc.want {
			t.Errorf("Read(%q) kind = %q, want %q", tc.in, records[0].Kind, tc.want)
		}
	}
}

func TestRead_UnsupportedKindDropped(t *testing.T) {
	records, warnings := Read([]Instruction{
		{Kind: "linear", X: f(10)},
		{Kind: "G33"},
		{Kind: "linear", X: f(20)},
	})
	if len(records) != 2 {
		t.Fatalf("Read() produced %d records, want 2 (unsupported kind dropped)", len(records))
	}
	if len(warnings) != 1 {
		t.Fatalf("Read() warnings = %v, want exactly one", warnings)
	}
	if warnings[0].Code != model.WarnUnsupportedInstruction {
		t.Errorf("warning code = %q, want %q", warnings[0].Code, model.WarnUnsupportedInstruction)
	}
	if warnings[0].Index != 1 {
		t.Errorf("warning index = %d, want 1", warnings[0].Index)
	}
}

func TestRead_ArcOffsetsAreRelative(t *testing.T) {
	records, _ := Read([]Instruction{
		{Kind: "linear", X: f(10), Y: f(10)},
		{Kind: "arc_cw", X: f(15), Y: f(15), I: f(5), J: f(0)},
	})
	arc := records[1]
	if arc.I != 5 || arc.J != 0 {
		t.Errorf("arc offsets = (%v, %v), want (5, 0) kept relative, never absolute", arc.I, arc.J)
	}
}

func TestRead_DrillRetract(t *testing.T) {
	records, _ := Read([]Instruction{
		{Kind: "drill", X: f(50), Y: f(50), Z: f(-12), R: f(2), Tool: model.NumericTool(65)},
	})
	if records[0].Retract != 2 {
		t.Errorf("drill retract = %v, want 2", records[0].Retract)
	}
}

func TestRead_OrderPreserved(t *testing.T) {
	instrs := []Instruction{
		{Kind: "rapid", Z: f(25)},
		{Kind: "linear", X: f(1)},
		{Kind: "linear", X: f(2)},
		{Kind: "linear", X: f(3)},
	}
	records, _ := Read(instrs)
	for i := 1; i < len(records); i++ {
		if records[i].End.X < records[i-1].End.X {
			t.Fatal("record order must equal instruction arrival order")
		}
	}
}
