package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junhaiqi/TopoRepeat/validate"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate params and check that every stage program is installed",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}

	result := validate.Validate(p)

	for _, e := range result.Errors {
		fmt.Fprintf(stderr(cmd), "ERROR: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr(cmd), "WARNING: %s\n", w)
	}

	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}
	if strict && len(result.Warnings) > 0 {
		return fmt.Errorf("validation failed (strict): %d warning(s)", len(result.Warnings))
	}

	fmt.Fprintln(stdout(cmd), "Validation passed.")
	return nil
}
