package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/types"
)

type fakeInvoker struct {
	calls []types.StageName
	fail  types.StageName
}

func (f *fakeInvoker) Invoke(ctx context.Context, inv runtime.Invocation) (runtime.Result, error) {
	f.calls = append(f.calls, inv.Stage)
	res := runtime.Result{LogPath: inv.LogPath}
	if err := os.MkdirAll(filepath.Dir(inv.LogPath), 0755); err != nil {
		return res, err
	}
	if err := os.WriteFile(inv.LogPath, []byte("$ "+inv.Program+"\n"), 0644); err != nil {
		return res, err
	}
	if inv.Stage == f.fail {
		res.ExitCode = 1
		return res, &types.ToolExecutionError{Stage: inv.Stage, Program: inv.Program, ExitCode: 1, LogPath: inv.LogPath}
	}
	content := "ok\n"
	if inv.Stage == types.StageCluster {
		content = ">u1\nACGTTGCAAC\n"
		if err := os.WriteFile(inv.PrimaryOutput+".clstr", []byte(">Cluster 0\n"), 0644); err != nil {
			return res, err
		}
	}
	target := inv.StdoutPath
	if target == "" {
		target = inv.PrimaryOutput
	}
	return res, os.WriteFile(target, []byte(content), 0644)
}

// setupRun writes an input file and a params file, and swaps the package
// globals a run depends on. It returns the output directory and the invoker.
func setupRun(t *testing.T, extraParams string) (string, *fakeInvoker) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "sampleA.fastq.gz")
	if err := os.WriteFile(input, []byte("@r1\nACGT\n+\nIIII\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	params := "input: " + input + "\noutput_dir: " + outDir + "\n" + extraParams
	path := filepath.Join(dir, "params.yaml")
	if err := os.WriteFile(path, []byte(params), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	inv := &fakeInvoker{}
	swap(t, &paramsFile, path)
	swap(t, &envFile, "")
	swap(t, &runTUI, false)
	swap(t, &verbose, false)
	swap(t, &newInvoker, func(runtime.Logger) runtime.Invoker { return inv })
	swap(t, &lookupPrograms, func(map[types.StageName]string) (map[types.StageName]string, error) { return nil, nil })
	return outDir, inv
}

func swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	old := *target
	*target = v
	t.Cleanup(func() { *target = old })
}
