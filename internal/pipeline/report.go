package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/cebdan/woodwop-post-processor/internal/model"
	"github.com/cebdan/woodwop-post-processor/internal/textio"
)

// writeReport produces the optional plain-text job report: a workpiece
// summary, the contour and operation inventory with routing decisions,
// the tools used, and the collected warnings.
func (p *Pipeline) writeReport(job *model.Job, result *Result, warnings []model.Warning, path string, at time.Time) error {
	rule := strings.Repeat("=", 70)

	lines := []string{
		rule,
		"Job Report",
		rule,
		"Run:       " + result.RunID,
		"Generated: " + at.Format("2006-01-02 15:04:05"),
		"",
		"Workpiece",
		fmt.Sprintf("  length    %.3f mm", job.Workpiece.Length),
		fmt.Sprintf("  width     %.3f mm", job.Workpiece.Width),
		fmt.Sprintf("  thickness %.3f mm", job.Workpiece.Thickness),
		fmt.Sprintf("  clearance %.3f mm", job.SafeHeight),
	}
	if job.Offset != (model.Vec3{}) {
		lines = append(lines, fmt.Sprintf("  offset    X=%.3f Y=%.3f", job.Offset.X, job.Offset.Y))
	}
	if !job.BBox.IsEmpty() {
		lines = append(lines,
			fmt.Sprintf("  extents   X %.3f..%.3f  Y %.3f..%.3f  Z %.3f..%.3f",
				job.BBox.Min.X, job.BBox.Max.X,
				job.BBox.Min.Y, job.BBox.Max.Y,
				job.BBox.Min.Z, job.BBox.Max.Z),
		)
	}

	lines = append(lines, "", fmt.Sprintf("Contours (%d)", len(job.Contours)))
	for _, c := range job.Contours {
		lines = append(lines, fmt.Sprintf("  ]%d  tool %s  %d elements  -> %s",
			c.ID, c.Tool, len(c.Elements), c.Target))
	}

	lines = append(lines, "", fmt.Sprintf("Operations (%d)", len(job.Operations)))
	for _, op := range job.Operations {
		switch op.Type {
		case model.OpDrill:
			lines = append(lines, fmt.Sprintf("  %s  tool %s  at X=%.3f Y=%.3f depth %.3f  -> %s",
				op.Type, op.Tool, op.Position.X, op.Position.Y, op.Depth, op.Target))
		default:
			lines = append(lines, fmt.Sprintf("  %s  tool %s  contour %d  -> %s",
				op.Type, op.Tool, op.ContourID, op.Target))
		}
	}

	lines = append(lines, "", "Tools used")
	for _, tool := range toolsUsed(job) {
		lines = append(lines, "  "+tool)
	}

	lines = append(lines, "", fmt.Sprintf("Warnings (%d)", len(warnings)))
	for _, w := range warnings {
		lines = append(lines, "  "+w.String())
	}
	lines = append(lines, "", rule)

	if err := textio.WriteFile(path, lines, textio.ASCII); err != nil {
		return fmt.Errorf("job report: %w", err)
	}
	return nil
}

// toolsUsed returns the distinct tool references in first-use order.
func toolsUsed(job *model.Job) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tool model.ToolRef) {
		if tool.IsZero() {
			return
		}
		key := tool.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	for _, c := range job.Contours {
		add(c.Tool)
	}
	for _, op := range job.Operations {
		add(op.Tool)
	}
	return out
}
