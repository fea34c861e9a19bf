// Package profile loads the machine profile: workpiece and stock
// dimensions, clearance height, output precision, codepage and the tool
// routing table. Profiles are YAML documents validated against an
// embedded CUE schema before anything downstream sees them.
package profile

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/cebdan/woodwop-post-processor/internal/model"
	"github.com/cebdan/woodwop-post-processor/internal/route"
	"github.com/cebdan/woodwop-post-processor/internal/textio"
)

//go:embed schema.cue
var schemaSrc string

// minSafeHeight is the clearance floor the controller expects. Profiles
// may opt out with allow_low_safe_height.
const minSafeHeight = 20.0

// Profile is the machine configuration for one conversion run.
type Profile struct {
	Workpiece          model.Workpiece `yaml:"workpiece"`
	SafeHeight         float64         `yaml:"safe_height"`
	AllowLowSafeHeight bool            `yaml:"allow_low_safe_height"`
	Precision          int             `yaml:"precision"`
	Comments           *bool           `yaml:"comments"`
	Codepage           textio.Encoding `yaml:"codepage"`
	Routing            route.Rules     `yaml:"routing"`
}

// Default returns the stock profile: an 800x600x20 workpiece, 20 mm
// clearance, 3-decimal output, comments on, cp1252 macro encoding and the
// default routing table.
func Default() Profile {
	comments := true
	return Profile{
		Workpiece: model.Workpiece{
			Length:    800,
			Width:     600,
			Thickness: 20,
		},
		SafeHeight: minSafeHeight,
		Precision:  3,
		Comments:   &comments,
		Codepage:   textio.CP1252,
		Routing:    route.DefaultRules(),
	}
}

// CommentsEnabled resolves the tri-state Comments field.
func (p Profile) CommentsEnabled() bool {
	return p.Comments == nil || *p.Comments
}

// Load reads, validates and completes a profile file. Fields the file
// leaves out keep their defaults. Schema violations are terminal
// configuration errors, not warnings.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes profile YAML.
func Parse(data []byte) (Profile, error) {
	if err := validate(data); err != nil {
		return Profile{}, err
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.Precision <= 0 {
		p.Precision = 3
	}
	if p.Codepage == "" {
		p.Codepage = textio.CP1252
	}
	if len(p.Routing.MacroRanges) == 0 && len(p.Routing.MotionRanges) == 0 {
		p.Routing = route.DefaultRules()
	}
	return p, nil
}

// ApplyFloor raises the clearance height to the controller minimum and
// reports whether it did. Profiles with allow_low_safe_height keep their
// value.
func (p *Profile) ApplyFloor() bool {
	if p.AllowLowSafeHeight || p.SafeHeight >= minSafeHeight {
		return false
	}
	p.SafeHeight = minSafeHeight
	return true
}

// validate unifies the document with the embedded #Profile schema.
func validate(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}
	if doc == nil {
		return nil
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile profile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Profile"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("profile schema: %w", err)
	}

	unified := def.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}
