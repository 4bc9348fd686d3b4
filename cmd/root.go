// Package cmd implements the toporepeat CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	paramsFile    string
	envFile       string
	verbose       bool
	themeOverride string

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "toporepeat",
	Short: "TopoRepeat: repeat-unit discovery from long reads",
	Long: "TopoRepeat runs the repeat-unit discovery workflow: read sampling, self-alignment, unit inference,\n" +
		"clustering, tandem extension, remapping and abundance estimation. Finished stages are reused on rerun.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&paramsFile, "params", "", "YAML params file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file with TOPOREPEAT_<STAGE> program overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&themeOverride, "theme", "", "TUI color theme: dark, light, or auto")
	addParamFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("toporepeat %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
