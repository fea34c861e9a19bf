package route

import (
	"testing"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

func TestRoute_Table(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		tool     model.ToolRef
		want     model.Target
		wantWarn bool
	}{
		{"low macro range start", model.NumericTool(60), model.MacroFormat, false},
		{"low macro range end", model.NumericTool(75), model.MacroFormat, false},
		{"high macro range start", model.NumericTool(400), model.MacroFormat, false},
		{"overlap resolves to macro", model.NumericTool(500), model.MacroFormat, false},
		{"motion range interior", model.NumericTool(550), model.MotionFormat, false},
		{"motion range end", model.NumericTool(600), model.MotionFormat, false},
		{"gap between ranges", model.NumericTool(76), model.MacroFormat, true},
		{"below every range", model.NumericTool(1), model.MacroFormat, true},
		{"above every range", model.NumericTool(601), model.MacroFormat, true},
		{"symbolic macro prefix", model.SymbolicTool("WW_SAW"), model.MacroFormat, false},
		{"prefix beats numeric range", model.NamedTool(550, "WW_GROOVE"), model.MacroFormat, false},
		{"unknown symbolic name", model.SymbolicTool("SAW_BLADE"), model.MacroFormat, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, warn := rules.Route(tt.tool)
			if target != tt.want {
				t.Errorf("Route(%s) = %q, want %q", tt.tool, target, tt.want)
			}
			if (warn != nil) != tt.wantWarn {
				t.Errorf("Route(%s) warning = %v, wantWarn %v", tt.tool, warn, tt.wantWarn)
			}
			if warn != nil && warn.Code != model.WarnToolOutOfRange {
				t.Errorf("warning code = %q, want %q", warn.Code, model.WarnToolOutOfRange)
			}
		})
	}
}

func TestRoute_Deterministic(t *testing.T) {
	rules := DefaultRules()
	tool := model.NamedTool(465, "WW_DRILL")
	first, _ := rules.Route(tool)
	for i := 0; i < 10; i++ {
		if got, _ := rules.Route(tool); got != first {
			t.Fatalf("Route is not stable: %q then %q", first, got)
		}
	}
}

func TestAnnotate_OperationInheritsContourTarget(t *testing.T) {
	contours := []model.Contour{
		{ID: 1, Tool: model.NumericTool(550)},
	}
	operations := []model.Operation{
		{Type: model.OpContourMill, ContourID: 1, Tool: model.NumericTool(65)},
	}

	warnings := Annotate(contours, operations, DefaultRules())
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if contours[0].Target != model.MotionFormat {
		t.Errorf("contour target = %q, want %q", contours[0].Target, model.MotionFormat)
	}
	// The operation names a macro-range tool but is bound to a motion
	// contour; it must follow the contour.
	if operations[0].Target != model.MotionFormat {
		t.Errorf("operation target = %q, want %q (inherited)", operations[0].Target, model.MotionFormat)
	}
}

func TestAnnotate_FreeOperationRoutedByOwnTool(t *testing.T) {
	operations := []model.Operation{
		{Type: model.OpDrill, Tool: model.NumericTool(68)},
		{Type: model.OpDrill, Tool: model.NumericTool(80)},
	}
	warnings := Annotate(nil, operations, DefaultRules())

	if operations[0].Target != model.MacroFormat {
		t.Errorf("drill 68 target = %q, want %q", operations[0].Target, model.MacroFormat)
	}
	if operations[1].Target != model.MacroFormat {
		t.Errorf("drill 80 target = %q, want %q (out-of-range default)", operations[1].Target, model.MacroFormat)
	}
	if len(warnings) != 1 || warnings[0].Code != model.WarnToolOutOfRange {
		t.Fatalf("warnings = %v, want one out-of-range warning for tool 80", warnings)
	}
}
