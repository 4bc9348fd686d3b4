package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junhaiqi/TopoRepeat/internal/format"
	"github.com/junhaiqi/TopoRepeat/pipeline"
)

var statusMarkdown bool

var statusCmd = &cobra.Command{
	Use:   "status [output-dir]",
	Short: "Show the manifest of the last run in an output directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusMarkdown, "markdown", false, "render as a Markdown table")
}

func runStatus(cmd *cobra.Command, args []string) error {
	outDir := flagOutputDir
	if len(args) == 1 {
		outDir = args[0]
	}
	if outDir == "" {
		p, err := loadParams(cmd)
		if err != nil {
			return err
		}
		outDir = p.OutputDir
	}
	if outDir == "" {
		return fmt.Errorf("no output directory: pass one as argument, with --output-dir or in --params")
	}

	m, err := pipeline.ReadManifest(manifestPath(outDir))
	if err != nil {
		return err
	}

	mode := format.ASCII
	if statusMarkdown {
		mode = format.Markdown
	}
	fmt.Fprint(stdout(cmd), format.Summary(m))
	fmt.Fprintln(stdout(cmd))
	fmt.Fprintln(stdout(cmd), format.ManifestTable(m, mode))
	return nil
}
