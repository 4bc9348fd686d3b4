package stages

import (
	"context"
	"os"
	"path/filepath"

	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/types"
)

// fakeInvoker stands in for the external tools. It writes plausible output
// for every stage and can be told to fail or to produce nothing.
type fakeInvoker struct {
	calls []runtime.Invocation
	fail  map[types.StageName]int
	empty map[types.StageName]bool
	units string
}

func (f *fakeInvoker) stages() []types.StageName {
	var out []types.StageName
	for _, c := range f.calls {
		out = append(out, c.Stage)
	}
	return out
}

func (f *fakeInvoker) Invoke(ctx context.Context, inv runtime.Invocation) (runtime.Result, error) {
	f.calls = append(f.calls, inv)
	res := runtime.Result{LogPath: inv.LogPath}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Dir(inv.LogPath), 0755); err != nil {
		return res, err
	}
	if err := os.WriteFile(inv.LogPath, []byte("$ "+inv.Program+"\n"), 0644); err != nil {
		return res, err
	}
	if code, ok := f.fail[inv.Stage]; ok {
		res.ExitCode = code
		return res, &types.ToolExecutionError{Stage: inv.Stage, Program: inv.Program, ExitCode: code, LogPath: inv.LogPath}
	}

	content := "output of " + string(inv.Stage) + "\n"
	if inv.Stage == types.StageCluster {
		content = f.units
		if content == "" {
			content = ">u1\nACGTACGTTT\n>u2\nGGGCCCAATT\n"
		}
		if err := os.WriteFile(inv.PrimaryOutput+".clstr", []byte(">Cluster 0\n0\t10nt, >u1... *\n"), 0644); err != nil {
			return res, err
		}
	}
	if f.empty[inv.Stage] {
		content = ""
	}
	target := inv.StdoutPath
	if target == "" {
		target = inv.PrimaryOutput
	}
	if target != "" {
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return res, err
		}
	}
	if inv.PrimaryOutput != "" && content == "" {
		return res, &types.EmptyOutputError{Stage: inv.Stage, Path: inv.PrimaryOutput, LogPath: inv.LogPath}
	}
	return res, nil
}
