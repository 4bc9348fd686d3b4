package runtime

import (
	"errors"
	"os/exec"

	"github.com/junhaiqi/TopoRepeat/types"
)

// LookupPrograms resolves every configured stage program on PATH. It returns
// the resolved absolute paths and one *types.MissingDependencyError per
// program that cannot be found, joined.
func LookupPrograms(programs map[types.StageName]string) (map[types.StageName]string, error) {
	resolved := make(map[types.StageName]string, len(programs))
	var errs []error
	for _, stage := range types.StageOrder {
		prog, ok := programs[stage]
		if !ok || prog == "" {
			continue
		}
		path, err := exec.LookPath(prog)
		if err != nil {
			errs = append(errs, &types.MissingDependencyError{Stage: stage, Program: prog, Err: err})
			continue
		}
		resolved[stage] = path
	}
	return resolved, errors.Join(errs...)
}
