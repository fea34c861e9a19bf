package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cebdan/woodwop-post-processor/internal/geometry"
	"github.com/cebdan/woodwop-post-processor/internal/model"
	"github.com/cebdan/woodwop-post-processor/internal/route"
	"github.com/cebdan/woodwop-post-processor/internal/toolpath"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Profile       string
	IncludeRapids bool
}

// NewCheckCommand creates the check command: it runs the job through
// reconstruction, resolution and routing, reports what it finds, and
// writes nothing.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "check <job.json>",
		Short:         "Validate a job file without writing artifacts",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "machine profile YAML")
	cmd.Flags().BoolVar(&opts.IncludeRapids, "include-rapids", false, "fold below-clearance rapids into contours")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, jobPath string) error {
	job, err := LoadJob(jobPath)
	if err != nil {
		return err
	}
	prof, err := loadProfile(opts.Profile)
	if err != nil {
		return err
	}
	if job.SafeHeight != nil {
		prof.SafeHeight = *job.SafeHeight
	}
	prof.ApplyFloor()

	records, warnings := toolpath.Read(job.Instructions)
	contours, operations, err := toolpath.Reconstruct(records, toolpath.Config{
		SafeHeight:    prof.SafeHeight,
		IncludeRapids: opts.IncludeRapids,
	})
	if err != nil {
		return err
	}
	if len(contours) == 0 && len(operations) == 0 {
		return model.NewEmptyJobError()
	}

	bbox, geomWarnings := geometry.Resolve(contours, operations)
	warnings = append(warnings, geomWarnings...)
	warnings = append(warnings, route.Annotate(contours, operations, prof.Routing)...)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d instructions, %d contours, %d operations\n",
		len(job.Instructions), len(contours), len(operations))
	if !bbox.IsEmpty() {
		fmt.Fprintf(out, "extents X %.3f..%.3f  Y %.3f..%.3f  Z %.3f..%.3f\n",
			bbox.Min.X, bbox.Max.X, bbox.Min.Y, bbox.Max.Y, bbox.Min.Z, bbox.Max.Z)
	}
	for _, c := range contours {
		fmt.Fprintf(out, "contour %d: tool %s, %d elements -> %s\n",
			c.ID, c.Tool, len(c.Elements), c.Target)
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return nil
}
