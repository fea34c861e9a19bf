package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cebdan/woodwop-post-processor/internal/pipeline"
	"github.com/cebdan/woodwop-post-processor/internal/profile"
	"github.com/cebdan/woodwop-post-processor/internal/tooldb"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Out           string
	Profile       string
	ToolDB        string
	Report        string
	MotionCode    bool
	IncludeRapids bool
	NoComments    bool
	Precision     int
	Fixture       string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <job.json>",
		Short: "Convert a toolpath job to MPR (and optionally NC) output",
		Long: `Convert a toolpath job file into a woodWOP MPR macro program.

The job file carries the ordered instruction stream plus per-job settings.
With --nc a plain motion-code artifact is written next to the MPR file for
the tools that route to the motion format.

Example:
  woodpost convert part.json --out part.mpr
  woodpost convert part.json --nc --profile machine.yaml --tooldb tools.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "MPR output path (default: job file name with .mpr)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "machine profile YAML")
	cmd.Flags().StringVar(&opts.ToolDB, "tooldb", "", "machine tool table (SQLite)")
	cmd.Flags().StringVar(&opts.Report, "report", "", "write a job report to this path")
	cmd.Flags().BoolVar(&opts.MotionCode, "nc", false, "also write the motion-code artifact")
	cmd.Flags().BoolVar(&opts.IncludeRapids, "include-rapids", false, "fold below-clearance rapids into contours")
	cmd.Flags().BoolVar(&opts.NoComments, "no-comments", false, "suppress comment output")
	cmd.Flags().IntVar(&opts.Precision, "precision", 0, "coordinate precision (default from profile)")
	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "coordinate system override (G54..G59)")

	return cmd
}

func runConvert(cmd *cobra.Command, opts *ConvertOptions, jobPath string) error {
	job, err := LoadJob(jobPath)
	if err != nil {
		return err
	}

	prof, err := loadProfile(opts.Profile)
	if err != nil {
		return err
	}
	if opts.Precision > 0 {
		prof.Precision = opts.Precision
	}
	if opts.NoComments {
		off := false
		prof.Comments = &off
	}
	if job.SafeHeight != nil {
		prof.SafeHeight = *job.SafeHeight
	}
	if prof.ApplyFloor() {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"warning: clearance height raised to %.0f mm minimum (set allow_low_safe_height to keep lower values)\n",
			prof.SafeHeight)
	}

	p := pipeline.Pipeline{Profile: prof}
	if opts.ToolDB != "" {
		store, err := tooldb.Open(opts.ToolDB)
		if err != nil {
			return err
		}
		defer store.Close()
		p.Tools = store
	}

	fixture := job.Fixture
	if opts.Fixture != "" {
		fixture = opts.Fixture
	}

	out := opts.Out
	if out == "" {
		out = replaceExt(jobPath, ".mpr")
	}

	result, err := p.Run(cmd.Context(), pipeline.Inputs{
		Instructions:   job.Instructions,
		Fixture:        fixture,
		Offset:         job.Offset,
		EmitMotionCode: opts.MotionCode || job.MotionCode,
		IncludeRapids:  opts.IncludeRapids,
		MacroPath:      out,
		ReportPath:     opts.Report,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", result.MacroPath)
	if result.MotionPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", result.MotionPath)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return nil
}

func loadProfile(path string) (profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		return path[:i] + ext
	}
	return path + ext
}
