package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/types"
)

// Status is the outcome of one stage.
type Status string

const (
	StatusRan     Status = "ran"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// StageResult records what happened to one stage in one run.
type StageResult struct {
	Stage     types.StageName     `json:"stage"`
	Status    Status              `json:"status"`
	Artifacts []artifact.Artifact `json:"artifacts"`
	LogPath   string              `json:"log_path,omitempty"`
	ExitCode  int                 `json:"exit_code"`
	Elapsed   time.Duration       `json:"elapsed_ns"`
	Error     string              `json:"error,omitempty"`
}

// OK reports whether the stage left valid outputs behind.
func (r StageResult) OK() bool { return r.Status != StatusFailed }

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Manifest is the ordered record of every stage outcome of one run. It is
// append-only while the run is in progress and frozen once it terminates.
type Manifest struct {
	RunID      string        `json:"run_id"`
	Input      string        `json:"input"`
	OutputDir  string        `json:"output_dir"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Status     RunStatus     `json:"status"`
	Terminal   string        `json:"terminal_artifact,omitempty"`
	Stages     []StageResult `json:"stages"`

	frozen bool
}

// NewManifest starts a manifest for a run of cfg.
func NewManifest(cfg *types.RunConfig) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Input:     cfg.Input(),
		OutputDir: cfg.OutDir(),
		StartedAt: time.Now().UTC(),
		Status:    RunRunning,
	}
}

func (m *Manifest) append(r StageResult) {
	if m.frozen {
		panic(fmt.Sprintf("pipeline: append to frozen manifest (stage %s)", r.Stage))
	}
	m.Stages = append(m.Stages, r)
}

func (m *Manifest) freeze(status RunStatus) {
	if m.frozen {
		return
	}
	now := time.Now().UTC()
	m.FinishedAt = &now
	m.Status = status
	m.frozen = true
}

// Frozen reports whether the run has terminated.
func (m *Manifest) Frozen() bool { return m.frozen }

// Last returns the most recent stage result.
func (m *Manifest) Last() (StageResult, bool) {
	if len(m.Stages) == 0 {
		return StageResult{}, false
	}
	return m.Stages[len(m.Stages)-1], true
}

// Result returns the result recorded for stage.
func (m *Manifest) Result(stage types.StageName) (StageResult, bool) {
	i := slices.IndexFunc(m.Stages, func(r StageResult) bool { return r.Stage == stage })
	if i < 0 {
		return StageResult{}, false
	}
	return m.Stages[i], true
}

// Executed lists the stages that actually ran (including the failing one).
func (m *Manifest) Executed() []types.StageName {
	var names []types.StageName
	for _, r := range m.Stages {
		if r.Status != StatusSkipped {
			names = append(names, r.Stage)
		}
	}
	return names
}

// WriteFile writes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteFile. The result is frozen.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	m.frozen = true
	return &m, nil
}
