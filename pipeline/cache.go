package pipeline

import (
	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/types"
)

// Cached is the skip predicate: every declared output exists as a non-empty
// file. Content is not validated, so a truncated but non-empty artifact from
// an interrupted earlier run is reused as is.
//
// When only some outputs are present the second return value describes the
// mismatch; the stage is not skippable in that case.
func Cached(stage types.StageName, outs []artifact.Artifact) (bool, *types.CachedResumeMismatch) {
	var present, missing []string
	for _, a := range outs {
		if a.Ready() {
			present = append(present, a.Path)
		} else {
			missing = append(missing, a.Path)
		}
	}
	if len(outs) > 0 && len(missing) == 0 {
		return true, nil
	}
	if len(present) > 0 {
		return false, &types.CachedResumeMismatch{Stage: stage, Present: present, Missing: missing}
	}
	return false, nil
}
