package stages

import (
	"context"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// SelfAlignStage computes all-vs-all overlaps of the sampled reads.
type SelfAlignStage struct{}

func (s *SelfAlignStage) Name() types.StageName { return types.StageSelfAlign }

func (s *SelfAlignStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindSampledReads}
}

func (s *SelfAlignStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindSelfAlignment}
}

func (s *SelfAlignStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageSelfAlign)
}

func (s *SelfAlignStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	in, err := paths(rc, artifact.KindSampledReads, artifact.KindSelfAlignment)
	if err != nil {
		return err
	}
	reads, paf := in[0], in[1]
	return run(ctx, rc, command{
		stage:   types.StageSelfAlign,
		args:    []string{"-x", avaPreset(rc.Config.Enum(types.StageSelfAlign, "preset")), "-t", threads(rc), reads, reads},
		stdout:  paf,
		primary: paf,
	})
}

// avaPreset maps a read technology to a minimap2 overlap preset. HiFi reads
// use the PacBio overlap preset.
func avaPreset(preset string) string {
	if preset == "ont" {
		return "ava-ont"
	}
	return "ava-pb"
}
