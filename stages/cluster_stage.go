package stages

import (
	"context"
	"strconv"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// ClusterStage collapses redundant units into cluster representatives. Its
// representatives feed both extend and remap.
type ClusterStage struct{}

func (s *ClusterStage) Name() types.StageName { return types.StageCluster }

func (s *ClusterStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindInferredUnits}
}

func (s *ClusterStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindClusteredUnits, artifact.KindClusterTable}
}

func (s *ClusterStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageCluster)
}

func (s *ClusterStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	in, err := paths(rc, artifact.KindInferredUnits, artifact.KindClusteredUnits)
	if err != nil {
		return err
	}
	cfg := rc.Config
	identity, _ := cfg.Option(types.StageCluster, "identity")
	ratio, _ := cfg.Option(types.StageCluster, "length_ratio")
	return run(ctx, rc, command{
		stage: types.StageCluster,
		args: []string{
			"-i", in[0],
			"-o", in[1],
			"-c", identity.String(),
			"-n", strconv.Itoa(wordSize(identity.Float())),
			"-s", ratio.String(),
			"-T", threads(rc),
			"-M", "0",
			"-d", "0",
		},
		primary: in[1],
	})
}

// wordSize returns the largest cd-hit-est word length accepted for the
// identity threshold.
func wordSize(identity float64) int {
	switch {
	case identity >= 0.95:
		return 10
	case identity >= 0.9:
		return 8
	case identity >= 0.88:
		return 7
	case identity >= 0.85:
		return 6
	default:
		return 5
	}
}
