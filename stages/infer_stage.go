package stages

import (
	"context"
	"strconv"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// InferUnitsStage infers candidate repeat units from the overlap graph. An
// empty unit set is fatal.
type InferUnitsStage struct{}

func (s *InferUnitsStage) Name() types.StageName { return types.StageInferUnits }

func (s *InferUnitsStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindSampledReads, artifact.KindSelfAlignment}
}

func (s *InferUnitsStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindInferredUnits}
}

func (s *InferUnitsStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageInferUnits)
}

func (s *InferUnitsStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	in, err := paths(rc, artifact.KindSampledReads, artifact.KindSelfAlignment, artifact.KindInferredUnits)
	if err != nil {
		return err
	}
	cfg := rc.Config
	args := []string{
		"-p", in[1],
		"-r", in[0],
		"-c", strconv.FormatInt(cfg.Int(types.StageInferUnits, "min_support"), 10),
		"-l", strconv.FormatInt(cfg.Int(types.StageInferUnits, "min_unit_length"), 10),
		"-f", cfg.Enum(types.StageInferUnits, "unit_format"),
	}
	if cfg.Enum(types.StageInferUnits, "read_mode") == "accurate" {
		args = append(args, "--accurate")
	}
	args = append(args, "-t", threads(rc), "-o", in[2])
	return run(ctx, rc, command{
		stage:   types.StageInferUnits,
		args:    args,
		primary: in[2],
	})
}
