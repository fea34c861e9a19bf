package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cebdan/woodwop-post-processor/internal/model"
	"github.com/cebdan/woodwop-post-processor/internal/profile"
	"github.com/cebdan/woodwop-post-processor/internal/toolpath"
)

func f(v float64) *float64 { return &v }

func quietProfile() profile.Profile {
	p := profile.Default()
	off := false
	p.Comments = &off
	return p
}

// rectangleJob is a closed rectangular cut at tool 65 followed by one
// vertical drill at tool 68.
func rectangleJob() []toolpath.Instruction {
	mill := model.NumericTool(65)
	return []toolpath.Instruction{
		{Kind: "rapid", X: f(0), Y: f(0), Z: f(30)},
		{Kind: "linear", X: f(0), Y: f(0), Z: f(-5), Tool: mill},
		{Kind: "linear", X: f(100), Y: f(0), Tool: mill},
		{Kind: "linear", X: f(100), Y: f(50), Tool: mill},
		{Kind: "linear", X: f(0), Y: f(50), Tool: mill},
		{Kind: "linear", X: f(0), Y: f(0), Tool: mill},
		{Kind: "rapid", Z: f(30)},
		{Kind: "drill", X: f(30), Y: f(40), Z: f(-12), Tool: model.NumericTool(68)},
	}
}

func run(t *testing.T, p *Pipeline, in Inputs) *Result {
	t.Helper()
	result, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	return result
}

func TestRun_MacroArtifact(t *testing.T) {
	dir := t.TempDir()
	macro := filepath.Join(dir, "part.mpr")
	p := &Pipeline{Profile: quietProfile()}

	result := run(t, p, Inputs{Instructions: rectangleJob(), MacroPath: macro})

	require.NotEmpty(t, result.RunID)
	require.Empty(t, result.Warnings)
	require.Equal(t, macro, result.MacroPath)
	require.Empty(t, result.MotionPath)

	data, err := os.ReadFile(macro)
	require.NoError(t, err)
	text := string(data)

	require.True(t, strings.HasPrefix(text, "[H\r\n"))
	require.True(t, strings.HasSuffix(text, "!\r\n"))
	require.NotContains(t, text, "\r\r")
	require.Contains(t, text, "]1\r\n")
	require.Contains(t, text, `<105 \Konturfraesen\`)
	require.Contains(t, text, `<102 \BohrVert\`)
	require.Contains(t, text, `TNO="68"`)
	require.Contains(t, text, `TI="12.000"`)
}

func TestRun_EmptyJob(t *testing.T) {
	p := &Pipeline{Profile: quietProfile()}
	_, err := p.Run(context.Background(), Inputs{
		Instructions: []toolpath.Instruction{{Kind: "rapid", Z: f(30)}},
		MacroPath:    filepath.Join(t.TempDir(), "part.mpr"),
	})
	require.Error(t, err)
	require.True(t, model.IsStructural(err))
}

func TestRun_MotionArtifactSplit(t *testing.T) {
	// Tool 550 routes to the motion format, tool 65 to the macro format;
	// each artifact must contain only its own geometry.
	dir := t.TempDir()
	macro := filepath.Join(dir, "part.mpr")

	mill := model.NumericTool(65)
	router := model.NumericTool(550)
	instructions := []toolpath.Instruction{
		{Kind: "linear", X: f(0), Y: f(0), Z: f(-5), Tool: mill},
		{Kind: "linear", X: f(100), Y: f(0), Tool: mill},
		{Kind: "rapid", Z: f(30)},
		{Kind: "linear", X: f(10), Y: f(10), Z: f(0), Tool: router},
		{Kind: "arc_cw", X: f(15), Y: f(15), I: f(5), J: f(0), Tool: router},
	}

	p := &Pipeline{Profile: quietProfile()}
	result := run(t, p, Inputs{
		Instructions:   instructions,
		MacroPath:      macro,
		EmitMotionCode: true,
	})

	require.Equal(t, filepath.Join(dir, "part.nc"), result.MotionPath)

	macroData, err := os.ReadFile(macro)
	require.NoError(t, err)
	require.Contains(t, string(macroData), "]1\r\n")
	require.NotContains(t, string(macroData), "]2\r\n")

	motionData, err := os.ReadFile(result.MotionPath)
	require.NoError(t, err)
	require.Contains(t, string(motionData), "G2 X15.000 Y15.000 Z0.000 I5.000 J0.000\r\n")
	require.NotContains(t, string(motionData), "X100.000")
}

func TestRun_MacroOnlyToolLeavesMotionEmpty(t *testing.T) {
	dir := t.TempDir()
	macro := filepath.Join(dir, "part.mpr")
	mill := model.NumericTool(65)
	instructions := []toolpath.Instruction{
		{Kind: "linear", X: f(0), Y: f(0), Z: f(0), Tool: mill},
		{Kind: "linear", X: f(100), Tool: mill},
	}

	p := &Pipeline{Profile: quietProfile()}
	result := run(t, p, Inputs{
		Instructions:   instructions,
		MacroPath:      macro,
		EmitMotionCode: true,
	})

	macroData, err := os.ReadFile(macro)
	require.NoError(t, err)
	require.Contains(t, string(macroData), "X=100.000")

	motionData, err := os.ReadFile(result.MotionPath)
	require.NoError(t, err)
	require.NotContains(t, string(motionData), "G1")
}

func TestRun_FixtureOffsetAppliesToMacroOnly(t *testing.T) {
	dir := t.TempDir()
	macro := filepath.Join(dir, "part.mpr")

	mill := model.NumericTool(65)
	router := model.NumericTool(550)
	instructions := []toolpath.Instruction{
		{Kind: "linear", X: f(-40), Y: f(-30), Z: f(-5), Tool: mill},
		{Kind: "linear", X: f(60), Y: f(-30), Tool: mill},
		{Kind: "rapid", Z: f(30)},
		{Kind: "linear", X: f(-40), Y: f(-30), Z: f(0), Tool: router},
		{Kind: "linear", X: f(60), Y: f(-30), Tool: router},
	}

	p := &Pipeline{Profile: quietProfile()}
	result := run(t, p, Inputs{
		Instructions:   instructions,
		Fixture:        "G54",
		EmitMotionCode: true,
		MacroPath:      macro,
	})

	// Derived offset moves the part minimum onto the origin.
	require.Equal(t, model.Vec3{X: 40, Y: 30}, result.Job.Offset)

	macroData, err := os.ReadFile(macro)
	require.NoError(t, err)
	require.Contains(t, string(macroData), "X=100.000")
	require.NotContains(t, string(macroData), "X=-40.000")

	motionData, err := os.ReadFile(result.MotionPath)
	require.NoError(t, err)
	require.Contains(t, string(motionData), "X60.000 Y-30.000")
}

func TestRun_ExplicitOffsetOverridesDerived(t *testing.T) {
	macro := filepath.Join(t.TempDir(), "part.mpr")
	p := &Pipeline{Profile: quietProfile()}

	result := run(t, p, Inputs{
		Instructions: rectangleJob(),
		Fixture:      "G54",
		Offset:       &model.Vec3{X: 7, Y: 9},
		MacroPath:    macro,
	})
	require.Equal(t, model.Vec3{X: 7, Y: 9}, result.Job.Offset)
}

func TestRun_WarningsCollectedAcrossStages(t *testing.T) {
	macro := filepath.Join(t.TempDir(), "part.mpr")
	odd := model.NumericTool(80)
	instructions := []toolpath.Instruction{
		{Kind: "spindle_on"},
		{Kind: "linear", X: f(0), Y: f(0), Z: f(-5), Tool: odd},
		{Kind: "arc_cw", X: f(30), Y: f(0), I: f(5), J: f(0), Tool: odd},
	}

	p := &Pipeline{Profile: quietProfile()}
	result := run(t, p, Inputs{Instructions: instructions, MacroPath: macro})

	codes := make(map[model.WarningCode]int)
	for _, w := range result.Warnings {
		codes[w.Code]++
	}
	require.Equal(t, 1, codes[model.WarnUnsupportedInstruction])
	require.Equal(t, 1, codes[model.WarnArcMismatch])
	require.Equal(t, 1, codes[model.WarnToolOutOfRange])
}

type staticNamer map[int]string

func (n staticNamer) Name(_ context.Context, number int) (string, bool, error) {
	name, ok := n[number]
	return name, ok, nil
}

func TestRun_ToolTableEnrichmentDrivesRouting(t *testing.T) {
	// Tool 550 sits in the motion range, but the machine table names it
	// with the macro prefix; the name rule wins.
	macro := filepath.Join(t.TempDir(), "part.mpr")
	tool := model.NumericTool(550)
	instructions := []toolpath.Instruction{
		{Kind: "linear", X: f(0), Y: f(0), Z: f(-5), Tool: tool},
		{Kind: "linear", X: f(100), Y: f(0), Tool: tool},
	}

	p := &Pipeline{
		Profile: quietProfile(),
		Tools:   staticNamer{550: "WW_GROOVER"},
	}
	result := run(t, p, Inputs{Instructions: instructions, MacroPath: macro})

	require.Empty(t, result.Warnings)
	require.Equal(t, model.MacroFormat, result.Job.Contours[0].Target)

	data, err := os.ReadFile(macro)
	require.NoError(t, err)
	require.Contains(t, string(data), "]1\r\n")
}

func TestRun_ReportArtifact(t *testing.T) {
	dir := t.TempDir()
	macro := filepath.Join(dir, "part.mpr")
	report := filepath.Join(dir, "part.txt")

	p := &Pipeline{
		Profile: quietProfile(),
		Now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	result := run(t, p, Inputs{
		Instructions: rectangleJob(),
		MacroPath:    macro,
		ReportPath:   report,
	})

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, result.RunID)
	require.Contains(t, text, "2025-06-01")
	require.Contains(t, text, "contour")
}

func TestReplaceExt(t *testing.T) {
	require.Equal(t, "out/part.nc", replaceExt("out/part.mpr", ".nc"))
	require.Equal(t, "part.nc", replaceExt("part", ".nc"))
	require.Equal(t, "a.b/part.nc", replaceExt("a.b/part", ".nc"))
}
