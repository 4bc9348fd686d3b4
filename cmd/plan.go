package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/internal/format"
	"github.com/junhaiqi/TopoRepeat/stages"
	"github.com/junhaiqi/TopoRepeat/types"
)

var planMarkdown bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show every stage's artifact paths and whether a run would reuse them",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planMarkdown, "markdown", false, "render as a Markdown table")
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}
	cfg, err := types.Resolve(p)
	if err != nil {
		return err
	}
	namer, err := artifact.NewNamer(cfg)
	if err != nil {
		return err
	}
	pl, err := stages.NewPipeline()
	if err != nil {
		return err
	}
	plans, err := pl.Plan(namer)
	if err != nil {
		return err
	}

	mode := format.ASCII
	if planMarkdown {
		mode = format.Markdown
	}
	fmt.Fprintf(stdout(cmd), "input:  %s\noutput: %s\n\n", cfg.Input(), cfg.OutDir())
	fmt.Fprintln(stdout(cmd), format.PlanTable(cfg, plans, mode))
	return nil
}
