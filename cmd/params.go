package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/junhaiqi/TopoRepeat/config"
	"github.com/junhaiqi/TopoRepeat/types"
)

var (
	flagInput              string
	flagOutputDir          string
	flagThreads            int
	flagSeed               int64
	flagPercent            float64
	flagMinReadLength      int
	flagPreset             string
	flagMinSupport         int
	flagMinUnitLength      int
	flagReadMode           string
	flagUnitFormat         string
	flagClusterIdentity    float64
	flagClusterLengthRatio float64
	flagExtendMinLength    int
	flagTools              map[string]string
)

func addParamFlags(fs *pflag.FlagSet) {
	d := types.DefaultParams()
	fs.StringVarP(&flagInput, "input", "i", "", "input reads (FASTA/FASTQ, optionally gzipped)")
	fs.StringVarP(&flagOutputDir, "output-dir", "o", "", "output root directory")
	fs.IntVarP(&flagThreads, "threads", "t", d.Threads, "threads passed to external tools")
	fs.Int64Var(&flagSeed, "seed", d.Seed, "random seed for read sampling")
	fs.Float64VarP(&flagPercent, "percent", "p", d.Percent, "percentage of reads to sample")
	fs.IntVar(&flagMinReadLength, "min-read-length", d.MinReadLength, "minimum read length kept by sampling")
	fs.StringVar(&flagPreset, "preset", d.Preset, "read technology: ont, pb, or hifi")
	fs.IntVar(&flagMinSupport, "min-support", d.MinSupport, "minimum read support for an inferred unit")
	fs.IntVar(&flagMinUnitLength, "min-unit-length", d.MinUnitLength, "minimum repeat unit length")
	fs.StringVar(&flagReadMode, "read-mode", d.ReadMode, "unit inference mode: noisy or accurate")
	fs.StringVar(&flagUnitFormat, "unit-format", d.UnitFormat, "read format: auto, fasta, or fastq")
	fs.Float64Var(&flagClusterIdentity, "cluster-identity", d.ClusterIdentity, "clustering identity threshold [0.8, 1.0]")
	fs.Float64Var(&flagClusterLengthRatio, "cluster-length-ratio", d.ClusterLengthRatio, "clustering length-difference cutoff (0, 1]")
	fs.IntVar(&flagExtendMinLength, "extend-min-length", d.ExtendMinLength, "minimum length of an extended tandem reference")
	fs.StringToStringVar(&flagTools, "tool", nil, "override a stage program, e.g. --tool cluster=/opt/cd-hit-est")
}

// applyFlags copies every flag the user set on fs into p.
func applyFlags(p *types.Params, fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "input":
			p.Input = flagInput
		case "output-dir":
			p.OutputDir = flagOutputDir
		case "threads":
			p.Threads = flagThreads
		case "seed":
			p.Seed = flagSeed
		case "percent":
			p.Percent = flagPercent
		case "min-read-length":
			p.MinReadLength = flagMinReadLength
		case "preset":
			p.Preset = flagPreset
		case "min-support":
			p.MinSupport = flagMinSupport
		case "min-unit-length":
			p.MinUnitLength = flagMinUnitLength
		case "read-mode":
			p.ReadMode = flagReadMode
		case "unit-format":
			p.UnitFormat = flagUnitFormat
		case "cluster-identity":
			p.ClusterIdentity = flagClusterIdentity
		case "cluster-length-ratio":
			p.ClusterLengthRatio = flagClusterLengthRatio
		case "extend-min-length":
			p.ExtendMinLength = flagExtendMinLength
		case "tool":
			if p.Tools == nil {
				p.Tools = make(map[string]string, len(flagTools))
			}
			for k, v := range flagTools {
				p.Tools[k] = v
			}
		}
	})
}

func flagSet(cmd *cobra.Command) *pflag.FlagSet {
	if cmd == nil {
		return nil
	}
	return cmd.Flags()
}

// loadParams assembles params from defaults, the params file, the environment
// and the command line, in increasing precedence.
func loadParams(cmd *cobra.Command) (types.Params, error) {
	p := types.DefaultParams()
	if paramsFile != "" {
		var err error
		if p, err = config.LoadParams(paramsFile, p); err != nil {
			return p, fmt.Errorf("loading params: %w", err)
		}
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return p, err
	}
	config.ApplyToolEnv(&p, os.LookupEnv)
	applyFlags(&p, flagSet(cmd))
	return p, nil
}
