// Package pipeline wires the conversion stages together: read,
// reconstruct, resolve, route, serialize, write. One Run call processes
// one job; the Job value is threaded through by argument and return and
// is owned exclusively by its run, so independent runs can execute in
// parallel without shared state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cebdan/woodwop-post-processor/internal/geometry"
	"github.com/cebdan/woodwop-post-processor/internal/model"
	"github.com/cebdan/woodwop-post-processor/internal/mpr"
	"github.com/cebdan/woodwop-post-processor/internal/ncode"
	"github.com/cebdan/woodwop-post-processor/internal/profile"
	"github.com/cebdan/woodwop-post-processor/internal/route"
	"github.com/cebdan/woodwop-post-processor/internal/textio"
	"github.com/cebdan/woodwop-post-processor/internal/toolpath"
)

// Inputs is the host handoff for one job.
type Inputs struct {
	Instructions []toolpath.Instruction

	// Fixture names the active coordinate system ("G54".."G59"); empty
	// means no fixture and no macro-view offset.
	Fixture string

	// Offset overrides the fixture offset. When nil and a fixture is
	// active, the offset is derived from the part minimum so the origin
	// lands on the part's minimum point.
	Offset *model.Vec3

	// EmitMotionCode produces the optional motion-code artifact.
	EmitMotionCode bool

	// IncludeRapids folds below-safe-height rapids into contours.
	IncludeRapids bool

	// MacroPath is the macro artifact destination. MotionPath defaults
	// to MacroPath with an .nc extension when empty.
	MacroPath  string
	MotionPath string

	// ReportPath, when set, receives a plain-text job report.
	ReportPath string
}

// Result is what a completed run hands back to the host.
type Result struct {
	RunID      string
	Job        *model.Job
	Warnings   []model.Warning
	MacroPath  string
	MotionPath string
}

// Pipeline converts jobs under one machine profile.
type Pipeline struct {
	Profile profile.Profile

	// Tools is the optional machine tool table used to resolve symbolic
	// names for numeric-only tool references.
	Tools ToolNamer

	Logger *slog.Logger

	// Now stamps reports and comment blocks; nil means wall clock.
	Now func() time.Time
}

// ToolNamer resolves a tool number to its symbolic name.
type ToolNamer interface {
	Name(ctx context.Context, number int) (string, bool, error)
}

// Run executes the full conversion for one job. It returns either the
// artifacts plus a possibly empty warning list, or the first fatal error
// with no partial artifact left behind.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	result := &Result{RunID: uuid.NewString()}
	log = log.With("run_id", result.RunID)

	records, warnings := toolpath.Read(in.Instructions)
	log.Debug("instructions read", "records", len(records), "dropped", len(warnings))

	if err := p.enrichTools(ctx, records); err != nil {
		return nil, err
	}

	contours, operations, err := toolpath.Reconstruct(records, toolpath.Config{
		SafeHeight:    p.Profile.SafeHeight,
		IncludeRapids: in.IncludeRapids,
	})
	if err != nil {
		return nil, err
	}
	if len(contours) == 0 && len(operations) == 0 {
		return nil, model.NewEmptyJobError()
	}

	bbox, geomWarnings := geometry.Resolve(contours, operations)
	warnings = append(warnings, geomWarnings...)

	job := &model.Job{
		Contours:   contours,
		Operations: operations,
		BBox:       bbox,
		Workpiece:  p.Profile.Workpiece,
		SafeHeight: p.Profile.SafeHeight,
	}
	job.Offset = p.fixtureOffset(in, bbox)

	routeWarnings := route.Annotate(job.Contours, job.Operations, p.Profile.Routing)
	warnings = append(warnings, routeWarnings...)

	log.Info("job reconstructed",
		"contours", len(job.Contours),
		"operations", len(job.Operations),
		"warnings", len(warnings),
		"fixture", in.Fixture,
	)

	if err := p.writeMacro(job, in, now); err != nil {
		return nil, err
	}
	result.MacroPath = in.MacroPath

	if in.EmitMotionCode {
		motionPath := in.MotionPath
		if motionPath == "" {
			motionPath = replaceExt(in.MacroPath, ".nc")
		}
		if err := p.writeMotion(job, motionPath); err != nil {
			return nil, err
		}
		result.MotionPath = motionPath
	}

	if in.ReportPath != "" {
		if err := p.writeReport(job, result, warnings, in.ReportPath, now()); err != nil {
			return nil, err
		}
	}

	result.Job = job
	result.Warnings = warnings
	return result, nil
}

// enrichTools fills in symbolic names for numeric-only references so the
// router's name rule can see tools the machine table designates by name.
func (p *Pipeline) enrichTools(ctx context.Context, records []model.MotionRecord) error {
	if p.Tools == nil {
		return nil
	}
	for i := range records {
		tool := records[i].Tool
		number, ok := tool.Number()
		if !ok || tool.Name() != "" {
			continue
		}
		name, found, err := p.Tools.Name(ctx, number)
		if err != nil {
			return fmt.Errorf("tool table lookup: %w", err)
		}
		if found {
			records[i].Tool = tool.WithName(name)
		}
	}
	return nil
}

// fixtureOffset resolves the macro-view coordinate offset. The offset
// applies only to the macro format; the motion-code view always keeps
// original coordinates.
func (p *Pipeline) fixtureOffset(in Inputs, bbox model.BBox) model.Vec3 {
	if in.Offset != nil {
		return *in.Offset
	}
	if in.Fixture == "" || bbox.IsEmpty() {
		return model.Vec3{}
	}
	return model.Vec3{X: -bbox.Min.X, Y: -bbox.Min.Y}
}

func (p *Pipeline) writeMacro(job *model.Job, in Inputs, now func() time.Time) error {
	serializer := mpr.New(mpr.Options{
		Workpiece:   job.Workpiece,
		SafeHeight:  job.SafeHeight,
		Precision:   p.Profile.Precision,
		Comments:    p.Profile.CommentsEnabled(),
		GeneratedAt: now(),
		Fixture:     in.Fixture,
		Offset:      job.Offset,
	})

	contours := filterContours(job.Contours, model.MacroFormat)
	contours = geometry.OffsetContours(contours, job.Offset.X, job.Offset.Y)
	operations := filterOperations(job.Operations, model.MacroFormat)
	operations = geometry.OffsetOperations(operations, job.Offset.X, job.Offset.Y)

	lines := serializer.Serialize(contours, operations)
	if err := textio.WriteFile(in.MacroPath, lines, p.Profile.Codepage); err != nil {
		return fmt.Errorf("macro artifact: %w", err)
	}
	return nil
}

func (p *Pipeline) writeMotion(job *model.Job, path string) error {
	serializer := ncode.New(p.Profile.Precision)
	lines := serializer.Serialize(
		filterContours(job.Contours, model.MotionFormat),
		filterOperations(job.Operations, model.MotionFormat),
	)
	if err := textio.WriteFile(path, lines, textio.ASCII); err != nil {
		return fmt.Errorf("motion artifact: %w", err)
	}
	return nil
}

func filterContours(contours []model.Contour, target model.Target) []model.Contour {
	out := make([]model.Contour, 0, len(contours))
	for _, c := range contours {
		if c.Target == target {
			out = append(out, c)
		}
	}
	return out
}

func filterOperations(operations []model.Operation, target model.Target) []model.Operation {
	out := make([]model.Operation, 0, len(operations))
	for _, op := range operations {
		if op.Target == target {
			out = append(out, op)
		}
	}
	return out
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		return path[:i] + ext
	}
	return path + ext
}
