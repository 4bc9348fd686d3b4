package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/types"
)

func TestRunRun_Success(t *testing.T) {
	outDir, inv := setupRun(t, "")

	if err := runRun(nil, nil); err != nil {
		t.Fatalf("runRun() error: %v", err)
	}
	if len(inv.calls) != 7 {
		t.Errorf("invocations = %v, want 7", inv.calls)
	}

	m, err := pipeline.ReadManifest(manifestPath(outDir))
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if m.Status != pipeline.RunSucceeded {
		t.Errorf("Status = %s", m.Status)
	}
	if len(m.Stages) != 8 {
		t.Errorf("stages = %d, want 8", len(m.Stages))
	}
	if !strings.HasPrefix(m.Terminal, filepath.Join(outDir, "08_abundance")) {
		t.Errorf("Terminal = %s", m.Terminal)
	}
	if _, err := os.Stat(filepath.Join(outDir, lockName)); !os.IsNotExist(err) {
		t.Error("lock file not released")
	}
	if _, err := os.Stat(filepath.Join(outDir, runLogName)); err != nil {
		t.Errorf("run log missing: %v", err)
	}
}

func TestRunRun_SecondRunInvokesNothing(t *testing.T) {
	outDir, _ := setupRun(t, "")
	if err := runRun(nil, nil); err != nil {
		t.Fatalf("first runRun() error: %v", err)
	}

	inv := &fakeInvoker{}
	swap(t, &newInvoker, func(runtime.Logger) runtime.Invoker { return inv })
	if err := runRun(nil, nil); err != nil {
		t.Fatalf("second runRun() error: %v", err)
	}
	if len(inv.calls) != 0 {
		t.Errorf("second run invoked %v", inv.calls)
	}
	m, err := pipeline.ReadManifest(manifestPath(outDir))
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if len(m.Executed()) != 0 {
		t.Errorf("Executed() = %v", m.Executed())
	}
}

func TestRunRun_FailureWritesManifest(t *testing.T) {
	outDir, inv := setupRun(t, "")
	inv.fail = types.StageRemap

	err := runRun(nil, nil)
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("runRun() error = %v, want StageError", err)
	}
	if !strings.Contains(err.Error(), "remap.log") {
		t.Errorf("error does not name the log: %v", err)
	}

	m, err := pipeline.ReadManifest(manifestPath(outDir))
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	last, _ := m.Last()
	if last.Stage != types.StageRemap || last.Status != pipeline.StatusFailed {
		t.Errorf("last = %+v", last)
	}
	if m.Status != pipeline.RunFailed {
		t.Errorf("Status = %s", m.Status)
	}
	want := []types.StageName{types.StageSample, types.StageSelfAlign, types.StageInferUnits, types.StageCluster, types.StageRemap}
	if diff := cmp.Diff(want, inv.calls); diff != "" {
		t.Errorf("invocations (-want +got):\n%s", diff)
	}
}

func TestRunRun_LockHeld(t *testing.T) {
	outDir, inv := setupRun(t, "")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, lockName), []byte("4242\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := runRun(nil, nil)
	if err == nil || !strings.Contains(err.Error(), "pid 4242") {
		t.Fatalf("runRun() error = %v, want lock error", err)
	}
	if len(inv.calls) != 0 {
		t.Errorf("invoked %v while locked", inv.calls)
	}
}

func TestRunRun_MissingProgram(t *testing.T) {
	_, inv := setupRun(t, "")
	swap(t, &lookupPrograms, func(map[types.StageName]string) (map[types.StageName]string, error) {
		return nil, &types.MissingDependencyError{Stage: types.StageCluster, Program: "cd-hit-est", Err: os.ErrNotExist}
	})
	if err := runRun(nil, nil); err == nil {
		t.Fatal("expected pre-flight error")
	}
	if len(inv.calls) != 0 {
		t.Errorf("invoked %v despite missing program", inv.calls)
	}
}

func TestRunRun_InvalidConfig(t *testing.T) {
	_, inv := setupRun(t, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	content := "input: " + filepath.Join(dir, "missing.fq") + "\noutput_dir: " + filepath.Join(dir, "out") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	swap(t, &paramsFile, path)

	err := runRun(nil, nil)
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "input" {
		t.Fatalf("runRun() error = %v, want ConfigurationError for input", err)
	}
	if len(inv.calls) != 0 {
		t.Errorf("invoked %v with a bad configuration", inv.calls)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Error("output root created before the configuration was valid")
	}
}

func TestRunRun_SchemaViolation(t *testing.T) {
	setupRun(t, "percent: 0\n")
	err := runRun(nil, nil)
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("runRun() error = %v, want ConfigurationError", err)
	}
}
