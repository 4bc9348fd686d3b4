package stages

import (
	"context"
	"strconv"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// SampleStage filters reads by length and draws a seeded random subsample.
type SampleStage struct{}

func (s *SampleStage) Name() types.StageName { return types.StageSample }

func (s *SampleStage) Requires() []artifact.Kind { return nil }

func (s *SampleStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindSampledReads}
}

func (s *SampleStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageSample)
}

func (s *SampleStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	out, err := rc.Path(artifact.KindSampledReads)
	if err != nil {
		return err
	}
	cfg := rc.Config
	pct, _ := cfg.Option(types.StageSample, "percent")
	return run(ctx, rc, command{
		stage: types.StageSample,
		args: []string{
			"-i", cfg.Input(),
			"-o", out,
			"-p", pct.String(),
			"-l", strconv.FormatInt(cfg.Int(types.StageSample, "min_read_length"), 10),
			"-s", strconv.FormatInt(cfg.Seed(), 10),
		},
		primary: out,
	})
}
