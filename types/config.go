// Package types holds the run configuration and the error taxonomy shared by
// every pipeline package.
package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageSample     StageName = "sample"
	StageSelfAlign  StageName = "self-align"
	StageInferUnits StageName = "infer-units"
	StageCluster    StageName = "cluster"
	StageExtend     StageName = "extend"
	StageRemap      StageName = "remap"
	StageIntervals  StageName = "intervals"
	StageAbundance  StageName = "abundance"
)

// StageOrder lists every stage in execution order.
var StageOrder = []StageName{
	StageSample,
	StageSelfAlign,
	StageInferUnits,
	StageCluster,
	StageExtend,
	StageRemap,
	StageIntervals,
	StageAbundance,
}

// DefaultPrograms maps each stage that shells out to its default program.
// Extend runs in-process and has no entry.
var DefaultPrograms = map[StageName]string{
	StageSample:     "sample_reads.py",
	StageSelfAlign:  "minimap2",
	StageInferUnits: "toporepeat-units",
	StageCluster:    "cd-hit-est",
	StageRemap:      "minimap2",
	StageIntervals:  "awk",
	StageAbundance:  "awk",
}

// Params is the mutable, file- and flag-facing form of the configuration.
// It becomes a RunConfig through Resolve.
type Params struct {
	Input              string            `yaml:"input" json:"input,omitempty"`
	OutputDir          string            `yaml:"output_dir" json:"output_dir,omitempty"`
	Threads            int               `yaml:"threads" json:"threads"`
	Seed               int64             `yaml:"seed" json:"seed"`
	Percent            float64           `yaml:"percent" json:"percent"`
	MinReadLength      int               `yaml:"min_read_length" json:"min_read_length"`
	Preset             string            `yaml:"preset" json:"preset"`
	MinSupport         int               `yaml:"min_support" json:"min_support"`
	MinUnitLength      int               `yaml:"min_unit_length" json:"min_unit_length"`
	ReadMode           string            `yaml:"read_mode" json:"read_mode"`
	UnitFormat         string            `yaml:"unit_format" json:"unit_format"`
	ClusterIdentity    float64           `yaml:"cluster_identity" json:"cluster_identity"`
	ClusterLengthRatio float64           `yaml:"cluster_length_ratio" json:"cluster_length_ratio"`
	ExtendMinLength    int               `yaml:"extend_min_length" json:"extend_min_length"`
	Tools              map[string]string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// DefaultParams returns Params populated with the built-in defaults.
func DefaultParams() Params {
	return Params{
		Threads:            4,
		Seed:               11,
		Percent:            10,
		MinReadLength:      10000,
		Preset:             "ont",
		MinSupport:         3,
		MinUnitLength:      100,
		ReadMode:           "noisy",
		UnitFormat:         "auto",
		ClusterIdentity:    0.9,
		ClusterLengthRatio: 0.8,
		ExtendMinLength:    1000,
	}
}

// ParseParams decodes YAML on top of base. Keys absent from data keep the
// values already present in base.
func ParseParams(data []byte, base Params) (Params, error) {
	p := base
	if err := yaml.Unmarshal(data, &p); err != nil {
		return base, fmt.Errorf("parsing params: %w", err)
	}
	return p, nil
}
