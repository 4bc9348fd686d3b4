package stages

import (
	"context"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// intervalsProgram converts PAF records to BED6: target name, target start,
// target end, query name, mapping quality, strand.
const intervalsProgram = `BEGIN { OFS = "\t" } NF >= 12 { print $6, $8, $9, $1, $12, $5 }`

// IntervalsStage converts the remap alignments to unit-coordinate intervals.
type IntervalsStage struct{}

func (s *IntervalsStage) Name() types.StageName { return types.StageIntervals }

func (s *IntervalsStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindRemapAlignment}
}

func (s *IntervalsStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindIntervalTable}
}

func (s *IntervalsStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageIntervals)
}

func (s *IntervalsStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	in, err := paths(rc, artifact.KindRemapAlignment, artifact.KindIntervalTable)
	if err != nil {
		return err
	}
	return run(ctx, rc, command{
		stage:   types.StageIntervals,
		args:    []string{intervalsProgram, in[0]},
		stdout:  in[1],
		primary: in[1],
	})
}
