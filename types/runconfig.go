package types

import (
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/junhaiqi/TopoRepeat/seqio"
)

// OptionKind is the type tag of an Option.
type OptionKind int

const (
	KindInt OptionKind = iota
	KindFloat
	KindEnum
	KindPath
)

func (k OptionKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Option is one typed, stage-specific parameter.
type Option struct {
	kind OptionKind
	i    int64
	f    float64
	s    string
}

func IntOption(v int64) Option     { return Option{kind: KindInt, i: v} }
func FloatOption(v float64) Option { return Option{kind: KindFloat, f: v} }
func EnumOption(v string) Option   { return Option{kind: KindEnum, s: v} }
func PathOption(v string) Option   { return Option{kind: KindPath, s: v} }

func (o Option) Kind() OptionKind { return o.kind }
func (o Option) Int() int64       { return o.i }
func (o Option) Float() float64   { return o.f }

// String renders the option canonically. Floats use the shortest exact
// representation so 10.0 prints as "10" and 0.90 as "0.9".
func (o Option) String() string {
	switch o.kind {
	case KindInt:
		return strconv.FormatInt(o.i, 10)
	case KindFloat:
		return strconv.FormatFloat(o.f, 'f', -1, 64)
	default:
		return o.s
	}
}

// OptionSet holds the options of one stage keyed by name.
type OptionSet map[string]Option

// RunConfig is the fully resolved, immutable configuration of one pipeline
// execution. It is only built by Resolve and never mutated afterwards.
type RunConfig struct {
	input    string
	outDir   string
	threads  int
	seed     int64
	format   seqio.Format
	programs map[StageName]string
	options  map[StageName]OptionSet
}

func (c *RunConfig) Input() string        { return c.input }
func (c *RunConfig) OutDir() string       { return c.outDir }
func (c *RunConfig) Threads() int         { return c.threads }
func (c *RunConfig) Seed() int64          { return c.seed }
func (c *RunConfig) Format() seqio.Format { return c.format }

// Program returns the program configured for stage, or "" for in-process stages.
func (c *RunConfig) Program(stage StageName) string { return c.programs[stage] }

// Programs returns a copy of the stage to program mapping.
func (c *RunConfig) Programs() map[StageName]string { return maps.Clone(c.programs) }

// Options returns a copy of the options of stage.
func (c *RunConfig) Options(stage StageName) OptionSet { return maps.Clone(c.options[stage]) }

// Option looks up a single stage option.
func (c *RunConfig) Option(stage StageName, key string) (Option, bool) {
	o, ok := c.options[stage][key]
	return o, ok
}

// Int, Float, Enum and Path return the option value or the zero value when the
// option is absent.
func (c *RunConfig) Int(stage StageName, key string) int64 {
	o, _ := c.Option(stage, key)
	return o.i
}

func (c *RunConfig) Float(stage StageName, key string) float64 {
	o, _ := c.Option(stage, key)
	return o.f
}

func (c *RunConfig) Enum(stage StageName, key string) string {
	o, _ := c.Option(stage, key)
	return o.s
}

func (c *RunConfig) Path(stage StageName, key string) string {
	o, _ := c.Option(stage, key)
	return o.s
}

var (
	knownPresets     = []string{"ont", "pb", "hifi"}
	knownReadModes   = []string{"noisy", "accurate"}
	knownUnitFormats = []string{"auto", "fasta", "fastq"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Resolve validates p and freezes it into a RunConfig. The first violation
// is returned as a *ConfigurationError.
func Resolve(p Params) (*RunConfig, error) {
	if strings.TrimSpace(p.Input) == "" {
		return nil, ConfigErrorf("input", "is required")
	}
	input, err := filepath.Abs(p.Input)
	if err != nil {
		return nil, &ConfigurationError{Field: "input", Err: err}
	}
	fi, err := os.Stat(input)
	if err != nil {
		return nil, &ConfigurationError{Field: "input", Reason: "cannot stat", Err: err}
	}
	if !fi.Mode().IsRegular() {
		return nil, ConfigErrorf("input", "%s is not a regular file", input)
	}

	if strings.TrimSpace(p.OutputDir) == "" {
		return nil, ConfigErrorf("output_dir", "is required")
	}
	outDir, err := filepath.Abs(p.OutputDir)
	if err != nil {
		return nil, &ConfigurationError{Field: "output_dir", Err: err}
	}

	switch {
	case p.Threads < 1:
		return nil, ConfigErrorf("threads", "must be >= 1, got %d", p.Threads)
	case p.Seed < 1:
		return nil, ConfigErrorf("seed", "must be >= 1 for reproducible sampling, got %d", p.Seed)
	case !(p.Percent > 0 && p.Percent <= 100):
		return nil, ConfigErrorf("percent", "must be in (0, 100], got %v", p.Percent)
	case p.MinReadLength < 0:
		return nil, ConfigErrorf("min_read_length", "must be >= 0, got %d", p.MinReadLength)
	case !oneOf(p.Preset, knownPresets):
		return nil, ConfigErrorf("preset", "%q must be one of: %s", p.Preset, strings.Join(knownPresets, ", "))
	case p.MinSupport < 1:
		return nil, ConfigErrorf("min_support", "must be >= 1, got %d", p.MinSupport)
	case p.MinUnitLength < 1:
		return nil, ConfigErrorf("min_unit_length", "must be >= 1, got %d", p.MinUnitLength)
	case !oneOf(p.ReadMode, knownReadModes):
		return nil, ConfigErrorf("read_mode", "%q must be one of: %s", p.ReadMode, strings.Join(knownReadModes, ", "))
	case !oneOf(p.UnitFormat, knownUnitFormats):
		return nil, ConfigErrorf("unit_format", "%q must be one of: %s", p.UnitFormat, strings.Join(knownUnitFormats, ", "))
	case !(p.ClusterIdentity >= 0.8 && p.ClusterIdentity <= 1):
		return nil, ConfigErrorf("cluster_identity", "must be in [0.8, 1.0], got %v", p.ClusterIdentity)
	case !(p.ClusterLengthRatio > 0 && p.ClusterLengthRatio <= 1):
		return nil, ConfigErrorf("cluster_length_ratio", "must be in (0, 1], got %v", p.ClusterLengthRatio)
	case p.ExtendMinLength < 1:
		return nil, ConfigErrorf("extend_min_length", "must be >= 1, got %d", p.ExtendMinLength)
	}

	format, err := resolveFormat(p.UnitFormat, input)
	if err != nil {
		return nil, err
	}

	programs := make(map[StageName]string, len(DefaultPrograms))
	for stage, prog := range DefaultPrograms {
		programs[stage] = prog
	}
	for name, prog := range p.Tools {
		stage := StageName(name)
		if _, ok := DefaultPrograms[stage]; !ok {
			return nil, ConfigErrorf("tools."+name, "no external program is run by this stage")
		}
		if strings.TrimSpace(prog) == "" {
			return nil, ConfigErrorf("tools."+name, "program must not be empty")
		}
		programs[stage] = prog
	}

	cfg := &RunConfig{
		input:    input,
		outDir:   outDir,
		threads:  p.Threads,
		seed:     p.Seed,
		format:   format,
		programs: programs,
		options: map[StageName]OptionSet{
			StageSample: {
				"percent":         FloatOption(p.Percent),
				"min_read_length": IntOption(int64(p.MinReadLength)),
			},
			StageSelfAlign: {
				"preset": EnumOption(p.Preset),
			},
			StageInferUnits: {
				"min_support":     IntOption(int64(p.MinSupport)),
				"min_unit_length": IntOption(int64(p.MinUnitLength)),
				"read_mode":       EnumOption(p.ReadMode),
				"unit_format":     EnumOption(string(format)),
			},
			StageCluster: {
				"identity":     FloatOption(p.ClusterIdentity),
				"length_ratio": FloatOption(p.ClusterLengthRatio),
			},
			StageExtend: {
				"min_length": IntOption(int64(p.ExtendMinLength)),
			},
			StageRemap: {
				"preset": EnumOption(p.Preset),
			},
		},
	}
	return cfg, nil
}

var fastqExts = []string{".fastq", ".fq"}
var fastaExts = []string{".fasta", ".fa", ".fna", ".fas"}

// resolveFormat turns the unit_format setting into a concrete format. "auto"
// looks at the extension first and falls back to sniffing the first byte.
func resolveFormat(setting, input string) (seqio.Format, error) {
	switch setting {
	case "fasta":
		return seqio.FormatFASTA, nil
	case "fastq":
		return seqio.FormatFASTQ, nil
	}
	name := strings.ToLower(filepath.Base(input))
	for _, ext := range []string{".gz", ".bz2", ".xz", ".zst"} {
		name = strings.TrimSuffix(name, ext)
	}
	ext := filepath.Ext(name)
	if oneOf(ext, fastqExts) {
		return seqio.FormatFASTQ, nil
	}
	if oneOf(ext, fastaExts) {
		return seqio.FormatFASTA, nil
	}
	f, err := seqio.Sniff(input)
	if err != nil {
		return "", &ConfigurationError{Field: "unit_format", Reason: "cannot detect input format", Err: err}
	}
	return f, nil
}
