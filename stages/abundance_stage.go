package stages

import (
	"context"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// abundanceProgram aggregates BED6 intervals per unit. Units are reported in
// order of first appearance.
const abundanceProgram = `BEGIN { OFS = "\t"; print "unit", "hits", "covered_bases", "mean_mapq" }
{
	if (!($1 in hits)) order[++k] = $1
	hits[$1]++
	bases[$1] += $3 - $2
	mapq[$1] += $5
}
END {
	for (i = 1; i <= k; i++) {
		u = order[i]
		printf "%s\t%d\t%d\t%.2f\n", u, hits[u], bases[u], mapq[u] / hits[u]
	}
}`

// AbundanceStage summarizes per-unit abundance. Its table is the terminal
// artifact of the pipeline.
type AbundanceStage struct{}

func (s *AbundanceStage) Name() types.StageName { return types.StageAbundance }

func (s *AbundanceStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindIntervalTable}
}

func (s *AbundanceStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindAbundanceTable}
}

func (s *AbundanceStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageAbundance)
}

func (s *AbundanceStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	in, err := paths(rc, artifact.KindIntervalTable, artifact.KindAbundanceTable)
	if err != nil {
		return err
	}
	return run(ctx, rc, command{
		stage:   types.StageAbundance,
		args:    []string{abundanceProgram, in[0]},
		stdout:  in[1],
		primary: in[1],
	})
}
