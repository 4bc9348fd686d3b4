package validate

import (
	"fmt"
	"os"
	goruntime "runtime"
	"strings"

	"github.com/junhaiqi/TopoRepeat/runtime"
	"github.com/junhaiqi/TopoRepeat/types"
)

// ValidationResult holds errors and warnings from params validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// ValidateParams checks p for errors and warnings. Unlike types.Resolve it
// reports every problem instead of stopping at the first.
func ValidateParams(p types.Params) *ValidationResult {
	r := &ValidationResult{}
	addErr := func(format string, a ...any) { r.Errors = append(r.Errors, fmt.Sprintf(format, a...)) }
	addWarn := func(format string, a ...any) { r.Warnings = append(r.Warnings, fmt.Sprintf(format, a...)) }

	if strings.TrimSpace(p.Input) == "" {
		addErr("input is required")
	} else if fi, err := os.Stat(p.Input); err != nil {
		addErr("input %s: %v", p.Input, err)
	} else if !fi.Mode().IsRegular() {
		addErr("input %s is not a regular file", p.Input)
	}
	if strings.TrimSpace(p.OutputDir) == "" {
		addErr("output_dir is required")
	} else if fi, err := os.Stat(p.OutputDir); err == nil && !fi.IsDir() {
		addErr("output_dir %s exists and is not a directory", p.OutputDir)
	}

	if p.Threads < 1 {
		addErr("threads must be >= 1, got %d", p.Threads)
	} else if n := goruntime.NumCPU(); p.Threads > n {
		addWarn("threads %d exceeds the %d available CPUs", p.Threads, n)
	}
	if p.Seed < 1 {
		addErr("seed must be >= 1, got %d", p.Seed)
	}
	switch {
	case !(p.Percent > 0 && p.Percent <= 100):
		addErr("percent must be in (0, 100], got %v", p.Percent)
	case p.Percent == 100:
		addWarn("percent is 100: reads are only length-filtered, not subsampled")
	}
	if p.MinReadLength < 0 {
		addErr("min_read_length must be >= 0, got %d", p.MinReadLength)
	}
	if p.MinSupport < 1 {
		addErr("min_support must be >= 1, got %d", p.MinSupport)
	}
	if p.MinUnitLength < 1 {
		addErr("min_unit_length must be >= 1, got %d", p.MinUnitLength)
	}
	if !(p.ClusterIdentity >= 0.8 && p.ClusterIdentity <= 1) {
		addErr("cluster_identity must be in [0.8, 1.0], got %v", p.ClusterIdentity)
	}
	if !(p.ClusterLengthRatio > 0 && p.ClusterLengthRatio <= 1) {
		addErr("cluster_length_ratio must be in (0, 1], got %v", p.ClusterLengthRatio)
	}
	if p.ExtendMinLength < 1 {
		addErr("extend_min_length must be >= 1, got %d", p.ExtendMinLength)
	} else if p.MinUnitLength > 0 && p.ExtendMinLength < 2*p.MinUnitLength {
		addWarn("extend_min_length %d is below two copies of min_unit_length %d; every reference will hold exactly two copies",
			p.ExtendMinLength, p.MinUnitLength)
	}

	enum := func(key, v string, allowed ...string) {
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		addErr("%s %q must be one of: %s", key, v, strings.Join(allowed, ", "))
	}
	enum("preset", p.Preset, "ont", "pb", "hifi")
	enum("read_mode", p.ReadMode, "noisy", "accurate")
	enum("unit_format", p.UnitFormat, "auto", "fasta", "fastq")
	if p.ReadMode == "accurate" && p.Preset == "ont" {
		addWarn("read_mode accurate with preset ont: ONT reads are usually noisy")
	}

	for name, prog := range p.Tools {
		if _, ok := types.DefaultPrograms[types.StageName(name)]; !ok {
			addErr("tools.%s: stage does not run an external program", name)
		} else if strings.TrimSpace(prog) == "" {
			addErr("tools.%s: program must not be empty", name)
		}
	}
	return r
}

// ValidatePrograms checks that every configured stage program resolves on
// PATH.
func ValidatePrograms(programs map[types.StageName]string) *ValidationResult {
	r := &ValidationResult{}
	if _, err := runtime.LookupPrograms(programs); err != nil {
		for _, e := range unjoin(err) {
			r.Errors = append(r.Errors, e.Error())
		}
	}
	return r
}

// Validate runs params validation and, when the params resolve, the program
// pre-flight.
func Validate(p types.Params) *ValidationResult {
	r := ValidateParams(p)
	if !r.IsValid() {
		return r
	}
	cfg, err := types.Resolve(p)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
		return r
	}
	r.merge(ValidatePrograms(cfg.Programs()))
	return r
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
