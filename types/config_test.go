package types

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func validParams(t *testing.T) Params {
	t.Helper()
	p := DefaultParams()
	p.Input = writeInput(t, "sampleA.fastq.gz", "@r1\nACGT\n+\nIIII\n")
	p.OutputDir = filepath.Join(t.TempDir(), "out")
	return p
}

func TestParseParams_KeepsDefaults(t *testing.T) {
	p, err := ParseParams([]byte(`
input: reads.fq
output_dir: out
percent: 12.5
min_read_length: 0
tools:
  cluster: /opt/cdhit/cd-hit-est
`), DefaultParams())
	if err != nil {
		t.Fatalf("ParseParams() error: %v", err)
	}
	if p.Percent != 12.5 {
		t.Errorf("Percent = %v, want 12.5", p.Percent)
	}
	if p.MinReadLength != 0 {
		t.Errorf("MinReadLength = %d, want 0", p.MinReadLength)
	}
	if p.Threads != 4 {
		t.Errorf("Threads = %d, want default 4", p.Threads)
	}
	if p.Tools["cluster"] != "/opt/cdhit/cd-hit-est" {
		t.Errorf("Tools[cluster] = %q", p.Tools["cluster"])
	}
}

func TestParseParams_InvalidYAML(t *testing.T) {
	if _, err := ParseParams([]byte("percent: [1"), DefaultParams()); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestResolve_Valid(t *testing.T) {
	cfg, err := Resolve(validParams(t))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Threads() != 4 {
		t.Errorf("Threads() = %d", cfg.Threads())
	}
	if cfg.Format() != "fastq" {
		t.Errorf("Format() = %q, want fastq", cfg.Format())
	}
	if got := cfg.Enum(StageInferUnits, "unit_format"); got != "fastq" {
		t.Errorf("unit_format = %q, want fastq", got)
	}
	if got := cfg.Float(StageCluster, "identity"); got != 0.9 {
		t.Errorf("cluster identity = %v", got)
	}
	if got := cfg.Program(StageSelfAlign); got != "minimap2" {
		t.Errorf("Program(self-align) = %q", got)
	}
	if got := cfg.Program(StageExtend); got != "" {
		t.Errorf("Program(extend) = %q, want empty", got)
	}
	if !filepath.IsAbs(cfg.OutDir()) {
		t.Errorf("OutDir() not absolute: %s", cfg.OutDir())
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		mut   func(*Params)
	}{
		{"missing input", "input", func(p *Params) { p.Input = "" }},
		{"absent input", "input", func(p *Params) { p.Input = "/nonexistent/reads.fq" }},
		{"missing output", "output_dir", func(p *Params) { p.OutputDir = " " }},
		{"zero threads", "threads", func(p *Params) { p.Threads = 0 }},
		{"zero seed", "seed", func(p *Params) { p.Seed = 0 }},
		{"percent zero", "percent", func(p *Params) { p.Percent = 0 }},
		{"percent over", "percent", func(p *Params) { p.Percent = 100.5 }},
		{"negative length", "min_read_length", func(p *Params) { p.MinReadLength = -1 }},
		{"bad preset", "preset", func(p *Params) { p.Preset = "illumina" }},
		{"zero support", "min_support", func(p *Params) { p.MinSupport = 0 }},
		{"zero unit length", "min_unit_length", func(p *Params) { p.MinUnitLength = 0 }},
		{"bad read mode", "read_mode", func(p *Params) { p.ReadMode = "fast" }},
		{"bad unit format", "unit_format", func(p *Params) { p.UnitFormat = "bam" }},
		{"low identity", "cluster_identity", func(p *Params) { p.ClusterIdentity = 0.5 }},
		{"zero ratio", "cluster_length_ratio", func(p *Params) { p.ClusterLengthRatio = 0 }},
		{"NaN percent", "percent", func(p *Params) { p.Percent = math.NaN() }},
		{"NaN identity", "cluster_identity", func(p *Params) { p.ClusterIdentity = math.NaN() }},
		{"NaN ratio", "cluster_length_ratio", func(p *Params) { p.ClusterLengthRatio = math.NaN() }},
		{"infinite percent", "percent", func(p *Params) { p.Percent = math.Inf(1) }},
		{"zero extend", "extend_min_length", func(p *Params) { p.ExtendMinLength = 0 }},
		{"unknown tool", "tools.extend", func(p *Params) { p.Tools = map[string]string{"extend": "x"} }},
		{"empty tool", "tools.remap", func(p *Params) { p.Tools = map[string]string{"remap": ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams(t)
			tt.mut(&p)
			_, err := Resolve(p)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Resolve() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestResolve_FormatDetection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		setting string
		want    string
	}{
		{"reads.fa", ">r\nA\n", "auto", "fasta"},
		{"reads.fastq", "@r\nA\n+\nI\n", "auto", "fastq"},
		{"reads.dat", ">r\nA\n", "auto", "fasta"},
		{"reads.fq", "@r\nA\n+\nI\n", "fasta", "fasta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams(t)
			p.Input = writeInput(t, tt.name, tt.content)
			p.UnitFormat = tt.setting
			cfg, err := Resolve(p)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if string(cfg.Format()) != tt.want {
				t.Errorf("Format() = %q, want %q", cfg.Format(), tt.want)
			}
		})
	}
}

func TestRunConfig_OptionsAreCopies(t *testing.T) {
	cfg, err := Resolve(validParams(t))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	opts := cfg.Options(StageSample)
	opts["percent"] = FloatOption(99)
	if got := cfg.Float(StageSample, "percent"); got != 10 {
		t.Errorf("RunConfig mutated through Options(): percent = %v", got)
	}
	progs := cfg.Programs()
	progs[StageCluster] = "other"
	if cfg.Program(StageCluster) != "cd-hit-est" {
		t.Error("RunConfig mutated through Programs()")
	}
}

func TestOption_String(t *testing.T) {
	tests := []struct {
		opt  Option
		want string
	}{
		{FloatOption(10), "10"},
		{FloatOption(12.5), "12.5"},
		{FloatOption(0.90), "0.9"},
		{IntOption(3), "3"},
		{EnumOption("ont"), "ont"},
		{PathOption("/x/y"), "/x/y"},
	}
	for _, tt := range tests {
		if got := tt.opt.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.opt.Kind(), got, tt.want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	err := &ToolExecutionError{Stage: StageCluster, Program: "cd-hit-est", ExitCode: 2, LogPath: "/o/04_cluster/cluster.log"}
	want := "stage cluster: cd-hit-est exited with status 2 (log: /o/04_cluster/cluster.log)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	cfgErr := ConfigErrorf("threads", "must be >= 1, got %d", 0)
	if cfgErr.Error() != "configuration error: threads: must be >= 1, got 0" {
		t.Errorf("Error() = %q", cfgErr.Error())
	}
}
