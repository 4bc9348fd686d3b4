package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/internal/tui"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/stages"
	"github.com/junhaiqi/TopoRepeat/types"
)

const (
	manifestName = "manifest.json"
	runLogName   = "toporepeat.log"
)

var (
	runTUI bool

	newInvoker = func(logger runtime.Logger) runtime.Invoker {
		return runtime.NewProcessInvoker(logger, 0)
	}
	lookupPrograms = runtime.LookupPrograms
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline, reusing stages whose outputs already exist",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runTUI, "tui", term.IsTerminal(int(os.Stdout.Fd())), "show the live progress view")
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func manifestPath(outDir string) string {
	return filepath.Join(outDir, manifestName)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}
	cfg, err := types.Resolve(p)
	if err != nil {
		return err
	}

	if _, err := lookupPrograms(cfg.Programs()); err != nil {
		var missing *types.MissingDependencyError
		if errors.As(err, &missing) {
			fmt.Fprintf(stderr(cmd), "ERROR: %v\n", err)
			return fmt.Errorf("pre-flight failed: required programs are missing")
		}
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

	release, err := acquireLock(cfg.OutDir())
	if err != nil {
		return err
	}
	defer release()

	logFile, err := os.OpenFile(filepath.Join(cfg.OutDir(), runLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer logFile.Close()
	var logOut io.Writer = logFile
	if verbose && !runTUI {
		logOut = io.MultiWriter(logFile, stderr(cmd))
	}
	logger := runtime.NewJSONLogger(logOut, verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := pipeline.NewRunContext(cfg, namer, newInvoker(logger), logger)
	logger.Info("run started", map[string]any{
		"run_id": rc.Manifest.RunID,
		"input":  cfg.Input(),
		"output": cfg.OutDir(),
	})

	theme := tui.DetectTheme(themeOverride)
	var m *pipeline.Manifest
	var runErr error
	if runTUI {
		names := make([]types.StageName, 0, len(pl.Stages()))
		for _, s := range pl.Stages() {
			names = append(names, s.Name())
		}
		header := tui.RenderBanner(tui.NewStyleSet(theme), appVersion, cfg.Input(), cfg.OutDir(), 80)
		m, runErr = tui.RunWithProgress(ctx, stdout(cmd), theme, header, names,
			func(ctx context.Context, obs pipeline.Observer) (*pipeline.Manifest, error) {
				rc.Observer = obs
				return pl.Run(ctx, rc)
			})
	} else {
		rc.Observer = tui.NewLinePrinter(stderr(cmd), theme)
		m, runErr = pl.Run(ctx, rc)
	}

	if m != nil {
		if err := m.WriteFile(manifestPath(cfg.OutDir())); err != nil {
			logger.Error("writing manifest", map[string]any{"error": err})
			if runErr == nil {
				runErr = err
			}
		}
	}
	if runErr != nil {
		logger.Error("run failed", map[string]any{"error": runErr})
		return fmt.Errorf("run failed: %w", runErr)
	}

	logger.Info("run finished", map[string]any{"terminal": m.Terminal})
	fmt.Fprintf(stdout(cmd), "Abundance table: %s\n", m.Terminal)
	return nil
}
