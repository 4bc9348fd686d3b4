package pipeline

import (
	"fmt"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/types"
)

// EventType classifies pipeline progress events.
type EventType string

const (
	EventStarted  EventType = "started"
	EventSkipped  EventType = "skipped"
	EventFinished EventType = "finished"
	EventFailed   EventType = "failed"
)

// Event reports progress of one stage. Result is nil for EventStarted.
type Event struct {
	Type   EventType
	Stage  types.StageName
	Index  int
	Total  int
	Result *StageResult
}

// Observer receives progress events synchronously from the engine loop.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// RunContext carries the shared state of one run through every stage. The
// configuration is read-only; artifacts are registered by the engine as
// stages are resolved.
type RunContext struct {
	Config   *types.RunConfig
	Namer    *artifact.Namer
	Invoker  runtime.Invoker
	Logger   runtime.Logger
	Observer Observer
	Manifest *Manifest

	artifacts map[artifact.Kind]artifact.Artifact
}

// NewRunContext creates a RunContext with a fresh manifest.
func NewRunContext(cfg *types.RunConfig, namer *artifact.Namer, inv runtime.Invoker, logger runtime.Logger) *RunContext {
	return &RunContext{
		Config:    cfg,
		Namer:     namer,
		Invoker:   inv,
		Logger:    logger,
		Manifest:  NewManifest(cfg),
		artifacts: make(map[artifact.Kind]artifact.Artifact),
	}
}

// Artifact returns the registered artifact of kind: an upstream input or one
// of the running stage's own outputs.
func (rc *RunContext) Artifact(kind artifact.Kind) (artifact.Artifact, error) {
	a, ok := rc.artifacts[kind]
	if !ok {
		return artifact.Artifact{}, fmt.Errorf("no %s artifact registered", kind)
	}
	return a, nil
}

// Path is Artifact(kind).Path.
func (rc *RunContext) Path(kind artifact.Kind) (string, error) {
	a, err := rc.Artifact(kind)
	return a.Path, err
}

func (rc *RunContext) register(outs []artifact.Artifact) {
	for _, a := range outs {
		rc.artifacts[a.Kind] = a
	}
}

func (rc *RunContext) emit(e Event) {
	if rc.Observer != nil {
		rc.Observer.OnEvent(e)
	}
}

// Log returns the run logger, or a no-op logger when none is set.
func (rc *RunContext) Log() runtime.Logger {
	if rc.Logger == nil {
		return nopLogger{}
	}
	return rc.Logger
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}
func (nopLogger) Debug(string, map[string]any) {}
