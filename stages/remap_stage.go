package stages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/seqio"
	"github.com/junhaiqi/TopoRepeat/types"
)

const minSecondary = 50

// RemapStage aligns the sampled reads back to the extended references. The
// number of secondary alignments scales with the number of cluster
// representatives.
type RemapStage struct{}

func (s *RemapStage) Name() types.StageName { return types.StageRemap }

func (s *RemapStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindSampledReads, artifact.KindClusteredUnits, artifact.KindExtendedReference}
}

func (s *RemapStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindRemapAlignment}
}

func (s *RemapStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageRemap)
}

func (s *RemapStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	in, err := paths(rc,
		artifact.KindSampledReads,
		artifact.KindClusteredUnits,
		artifact.KindExtendedReference,
		artifact.KindRemapAlignment)
	if err != nil {
		return err
	}
	reads, units, ref, paf := in[0], in[1], in[2], in[3]

	n, err := seqio.CountFASTA(units)
	if err != nil {
		return fmt.Errorf("counting cluster representatives: %w", err)
	}
	return run(ctx, rc, command{
		stage: types.StageRemap,
		args: []string{
			"-c",
			"-x", "map-" + rc.Config.Enum(types.StageRemap, "preset"),
			"--secondary=yes",
			"-N", strconv.Itoa(secondaryLimit(n)),
			"-p", "0.1",
			"-t", threads(rc),
			ref, reads,
		},
		stdout:  paf,
		primary: paf,
	})
}

func secondaryLimit(units int) int {
	return max(minSecondary, 2*units)
}
