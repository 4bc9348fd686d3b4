// Package stages implements the eight TopoRepeat pipeline stages. Every stage
// except extend wraps exactly one external program invocation.
package stages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/types"
)

// Default returns the stages in execution order.
func Default() []pipeline.Stage {
	return []pipeline.Stage{
		&SampleStage{},
		&SelfAlignStage{},
		&InferUnitsStage{},
		&ClusterStage{},
		&ExtendStage{},
		&RemapStage{},
		&IntervalsStage{},
		&AbundanceStage{},
	}
}

// NewPipeline builds the default stage chain.
func NewPipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(Default()...)
}

// command is the derived invocation of one external stage program.
type command struct {
	stage   types.StageName
	args    []string
	stdout  string
	primary string
}

func run(ctx context.Context, rc *pipeline.RunContext, c command) error {
	if rc.Invoker == nil {
		return fmt.Errorf("stage %s: no invoker configured", c.stage)
	}
	prog := rc.Config.Program(c.stage)
	if prog == "" {
		return fmt.Errorf("stage %s: no program configured", c.stage)
	}
	_, err := rc.Invoker.Invoke(ctx, runtime.Invocation{
		Stage:         c.stage,
		Program:       prog,
		Args:          c.args,
		Dir:           rc.Namer.Dir(c.stage),
		StdoutPath:    c.stdout,
		LogPath:       rc.Namer.LogPath(c.stage),
		PrimaryOutput: c.primary,
	})
	return err
}

func paths(rc *pipeline.RunContext, kinds ...artifact.Kind) ([]string, error) {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		p, err := rc.Path(k)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func threads(rc *pipeline.RunContext) string {
	return strconv.Itoa(rc.Config.Threads())
}
