// Package pipeline provides the sequential, fail-fast stage engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/types"
)

// Stage is a single unit of work in the pipeline.
type Stage interface {
	Name() types.StageName
	// Requires lists the upstream artifact kinds the stage reads.
	Requires() []artifact.Kind
	// Produces lists the artifact kinds the stage writes.
	Produces() []artifact.Kind
	// Outputs resolves the stage's declared outputs through the namer.
	Outputs(n *artifact.Namer) ([]artifact.Artifact, error)
	Execute(ctx context.Context, rc *RunContext) error
}

// Pipeline executes a sequence of stages in order.
type Pipeline struct {
	stages []Stage
}

// New creates a Pipeline from the given stages. Every required kind must be
// produced by an earlier stage.
func New(stages ...Stage) (*Pipeline, error) {
	producedBy := make(map[artifact.Kind]types.StageName)
	seen := make(map[types.StageName]bool)
	for _, s := range stages {
		if seen[s.Name()] {
			return nil, types.ConfigErrorf("stages", "stage %s listed twice", s.Name())
		}
		seen[s.Name()] = true
		for _, k := range s.Requires() {
			if _, ok := producedBy[k]; !ok {
				return nil, types.ConfigErrorf("stages", "stage %s requires %s, which no earlier stage produces", s.Name(), k)
			}
		}
		for _, k := range s.Produces() {
			if prev, ok := producedBy[k]; ok {
				return nil, types.ConfigErrorf("stages", "stages %s and %s both produce %s", prev, s.Name(), k)
			}
			producedBy[k] = s.Name()
		}
	}
	return &Pipeline{stages: stages}, nil
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage { return p.stages }

// StagePlan is the resolved output set of one stage.
type StagePlan struct {
	Stage   Stage
	Outputs []artifact.Artifact
}

// Plan resolves every stage's outputs. It checks that each stage declares
// exactly the kinds it produces and that no path is claimed by two kinds.
func (p *Pipeline) Plan(n *artifact.Namer) ([]StagePlan, error) {
	plans := make([]StagePlan, 0, len(p.stages))
	claimed := make(map[string]artifact.Kind)
	for _, s := range p.stages {
		outs, err := s.Outputs(n)
		if err != nil {
			return nil, fmt.Errorf("resolving outputs of stage %s: %w", s.Name(), err)
		}
		if err := checkKinds(s, outs); err != nil {
			return nil, err
		}
		for _, a := range outs {
			if k, ok := claimed[a.Path]; ok && k != a.Kind {
				return nil, types.ConfigErrorf("artifacts", "%s is claimed as both %s and %s", a.Path, k, a.Kind)
			}
			claimed[a.Path] = a.Kind
		}
		plans = append(plans, StagePlan{Stage: s, Outputs: outs})
	}
	return plans, nil
}

func checkKinds(s Stage, outs []artifact.Artifact) error {
	want := make(map[artifact.Kind]bool)
	for _, k := range s.Produces() {
		want[k] = true
	}
	if len(outs) != len(want) {
		return types.ConfigErrorf("artifacts", "stage %s declares %d outputs but produces %d kinds", s.Name(), len(outs), len(want))
	}
	for _, a := range outs {
		if !want[a.Kind] {
			return types.ConfigErrorf("artifacts", "stage %s declares unexpected output kind %s", s.Name(), a.Kind)
		}
	}
	return nil
}

// Run executes each stage sequentially. Stages whose outputs are already
// present are skipped. It stops on the first error and returns the manifest
// accumulated so far together with a *StageError. A cancelled context
// leaves no result for the interrupted stage.
func (p *Pipeline) Run(ctx context.Context, rc *RunContext) (*Manifest, error) {
	m := rc.Manifest
	log := rc.Log()

	plans, err := p.Plan(rc.Namer)
	if err != nil {
		m.freeze(RunFailed)
		return m, err
	}

	total := len(plans)
	for i, plan := range plans {
		s := plan.Stage
		name := s.Name()
		logPath := rc.Namer.LogPath(name)

		if err := ctx.Err(); err != nil {
			m.freeze(RunCancelled)
			return m, fmt.Errorf("pipeline cancelled before stage %s: %w", name, err)
		}

		cached, mismatch := Cached(name, plan.Outputs)
		if cached {
			res := StageResult{Stage: name, Status: StatusSkipped, Artifacts: plan.Outputs}
			rc.register(plan.Outputs)
			m.append(res)
			log.Info("stage skipped, outputs present", map[string]any{"stage": string(name)})
			rc.emit(Event{Type: EventSkipped, Stage: name, Index: i, Total: total, Result: &res})
			continue
		}
		if mismatch != nil {
			log.Warn("rerunning stage with incomplete cached outputs", map[string]any{
				"stage": string(name),
				"error": mismatch,
			})
		}

		rc.register(plan.Outputs)
		log.Info("stage started", map[string]any{"stage": string(name)})
		rc.emit(Event{Type: EventStarted, Stage: name, Index: i, Total: total})

		start := time.Now()
		err := os.MkdirAll(rc.Namer.Dir(name), 0755)
		if err == nil {
			err = s.Execute(ctx, rc)
		}
		if err == nil {
			err = verifyOutputs(name, plan.Outputs, logPath)
		}
		elapsed := time.Since(start)

		if err != nil {
			discard(plan.Outputs)
			if ctx.Err() != nil {
				m.freeze(RunCancelled)
				log.Warn("stage interrupted", map[string]any{"stage": string(name)})
				return m, fmt.Errorf("stage %s interrupted: %w", name, ctx.Err())
			}
			res := StageResult{
				Stage:    name,
				Status:   StatusFailed,
				LogPath:  existingLog(logPath),
				ExitCode: exitCode(err),
				Elapsed:  elapsed,
				Error:    err.Error(),
			}
			m.append(res)
			m.freeze(RunFailed)
			log.Error("stage failed", map[string]any{"stage": string(name), "log": res.LogPath, "error": err})
			rc.emit(Event{Type: EventFailed, Stage: name, Index: i, Total: total, Result: &res})
			return m, &StageError{Stage: name, LogPath: res.LogPath, Err: err}
		}

		res := StageResult{
			Stage:     name,
			Status:    StatusRan,
			Artifacts: plan.Outputs,
			LogPath:   existingLog(logPath),
			Elapsed:   elapsed,
		}
		m.append(res)
		log.Info("stage finished", map[string]any{"stage": string(name), "elapsed": elapsed.String()})
		rc.emit(Event{Type: EventFinished, Stage: name, Index: i, Total: total, Result: &res})
	}

	if total > 0 {
		m.Terminal = plans[total-1].Outputs[0].Path
	}
	m.freeze(RunSucceeded)
	return m, nil
}

func verifyOutputs(stage types.StageName, outs []artifact.Artifact, logPath string) error {
	for _, a := range outs {
		if !a.Ready() {
			return &types.EmptyOutputError{Stage: stage, Path: a.Path, LogPath: existingLog(logPath)}
		}
	}
	return nil
}

// discard removes whatever a failed or interrupted attempt left behind so a
// later run cannot mistake it for a cached result.
func discard(outs []artifact.Artifact) {
	for _, a := range outs {
		_ = os.Remove(a.Path)
		_ = os.Remove(a.Path + ".partial")
	}
}

func existingLog(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func exitCode(err error) int {
	var toolErr *types.ToolExecutionError
	if errors.As(err, &toolErr) {
		return toolErr.ExitCode
	}
	return -1
}
