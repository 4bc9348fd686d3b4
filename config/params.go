// Package config loads pipeline parameters from a params file, the
// environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/junhaiqi/TopoRepeat/types"
	"github.com/junhaiqi/TopoRepeat/validate"
)

// EnvPrefix prefixes the per-stage program override variables.
const EnvPrefix = "TOPOREPEAT_"

// LoadParams reads the params file at path and decodes it on top of base.
// The document is checked against the params schema first.
func LoadParams(path string, base types.Params) (types.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading params file %s: %w", path, err)
	}
	errs, err := validate.ValidateParamsYAML(data)
	if err != nil {
		return base, &types.ConfigurationError{Field: "params", Reason: path, Err: err}
	}
	if len(errs) > 0 {
		return base, types.ConfigErrorf("params", "%s: %s", path, strings.Join(errs, "; "))
	}
	return types.ParseParams(data, base)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set keep their value.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// EnvVar returns the variable that overrides the program of stage, e.g.
// TOPOREPEAT_SELF_ALIGN.
func EnvVar(stage types.StageName) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(string(stage), "-", "_"))
}

// ApplyToolEnv copies program overrides found through lookup into p.Tools.
// Only stages that run an external program are consulted.
func ApplyToolEnv(p *types.Params, lookup func(string) (string, bool)) {
	for _, stage := range types.StageOrder {
		if _, ok := types.DefaultPrograms[stage]; !ok {
			continue
		}
		v, ok := lookup(EnvVar(stage))
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if p.Tools == nil {
			p.Tools = make(map[string]string)
		}
		p.Tools[string(stage)] = strings.TrimSpace(v)
	}
}
