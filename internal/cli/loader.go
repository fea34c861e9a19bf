package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cebdan/woodwop-post-processor/internal/model"
	"github.com/cebdan/woodwop-post-processor/internal/toolpath"
)

// JobFile is the JSON document a host hands to the CLI: the ordered
// instruction list plus the per-job settings of the conversion contract.
type JobFile struct {
	Instructions []toolpath.Instruction `json:"instructions"`

	// Fixture names the active coordinate system ("G54".."G59").
	Fixture string `json:"fixture,omitempty"`

	// Offset is an explicit fixture offset; omitted means derive it
	// from the part minimum when a fixture is active.
	Offset *model.Vec3 `json:"offset,omitempty"`

	// SafeHeight overrides the profile's clearance height.
	SafeHeight *float64 `json:"safe_height,omitempty"`

	// MotionCode requests the optional NC artifact.
	MotionCode bool `json:"motion_code,omitempty"`
}

// LoadJob reads and decodes a job file.
func LoadJob(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	var job JobFile
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	if len(job.Instructions) == 0 {
		return nil, fmt.Errorf("job file %s contains no instructions", path)
	}
	return &job, nil
}
