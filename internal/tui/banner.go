package tui

import (
	"fmt"
	"strings"
)

// RenderBanner returns the run header: program name, input and output root.
func RenderBanner(styles *StyleSet, version, input, outDir string, width int) string {
	if version == "" {
		version = "dev"
	}
	title := styles.Title.Render("T O P O R E P E A T") + "  " + styles.DimTxt.Render("v"+version)

	dividerWidth := min(max(width-4, 20), 60)
	divider := styles.Divider.Render(strings.Repeat("─", dividerWidth))

	return fmt.Sprintf("  %s\n  %s %s\n  %s %s\n  %s\n",
		title,
		styles.SecondaryTxt.Render("input "), styles.PrimaryTxt.Render(input),
		styles.SecondaryTxt.Render("output"), styles.PrimaryTxt.Render(outDir),
		divider)
}
