package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/junhaiqi/TopoRepeat/seqio"
	"github.com/junhaiqi/TopoRepeat/types"
)

// Defaults that are left out of file names so the common case stays short.
const (
	defaultMinReadLength = 10000
	defaultSeed          = 11
)

var stageDirs = map[types.StageName]string{
	types.StageSample:     "01_sample",
	types.StageSelfAlign:  "02_selfalign",
	types.StageInferUnits: "03_units",
	types.StageCluster:    "04_cluster",
	types.StageExtend:     "05_extend",
	types.StageRemap:      "06_remap",
	types.StageIntervals:  "07_intervals",
	types.StageAbundance:  "08_abundance",
}

var (
	compressionExts = []string{".gz", ".bz2", ".xz", ".zst"}
	formatExts      = []string{".fastq", ".fq", ".fasta", ".fa", ".fna", ".fas"}
	unsafeChars     = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// BaseName strips compression and format extensions from the input file name
// and replaces characters that are unsafe in file names.
func BaseName(input string) (string, error) {
	name := filepath.Base(input)
	if name == "." || name == string(filepath.Separator) {
		return "", types.ConfigErrorf("input", "cannot derive a base name from %q", input)
	}
	lower := strings.ToLower(name)
	for _, ext := range compressionExts {
		if strings.HasSuffix(lower, ext) {
			name, lower = name[:len(name)-len(ext)], lower[:len(lower)-len(ext)]
			break
		}
	}
	for _, ext := range formatExts {
		if strings.HasSuffix(lower, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return "", types.ConfigErrorf("input", "cannot derive a base name from %q", input)
	}
	return name, nil
}

// Namer derives the deterministic artifact paths of every stage.
type Namer struct {
	cfg  *types.RunConfig
	base string
}

// NewNamer derives the base name from cfg and makes sure the output root
// exists.
func NewNamer(cfg *types.RunConfig) (*Namer, error) {
	base, err := BaseName(cfg.Input())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutDir(), 0755); err != nil {
		return nil, &types.ConfigurationError{Field: "output_dir", Reason: "cannot create output root", Err: err}
	}
	return &Namer{cfg: cfg, base: base}, nil
}

// Base returns the derived input base name.
func (n *Namer) Base() string { return n.base }

// Dir returns the subdirectory owned by stage.
func (n *Namer) Dir(stage types.StageName) string {
	return filepath.Join(n.cfg.OutDir(), stageDirs[stage])
}

// LogPath returns the diagnostic log file of stage.
func (n *Namer) LogPath(stage types.StageName) string {
	return filepath.Join(n.Dir(stage), string(stage)+".log")
}

func (n *Namer) opt(stage types.StageName, key string) string {
	o, _ := n.cfg.Option(stage, key)
	return o.String()
}

// stem builds the parameter-encoded file name prefix shared by stage and
// every stage downstream of it.
func (n *Namer) stem(stage types.StageName) string {
	s := fmt.Sprintf("%s_%spct", n.base, n.opt(types.StageSample, "percent"))
	if l := n.cfg.Int(types.StageSample, "min_read_length"); l != defaultMinReadLength {
		s += fmt.Sprintf(".l%d", l)
	}
	if seed := n.cfg.Seed(); seed != defaultSeed {
		s += fmt.Sprintf(".seed%d", seed)
	}
	if stage == types.StageSample {
		return s
	}
	s += "." + n.opt(types.StageSelfAlign, "preset")
	if stage == types.StageSelfAlign {
		return s
	}
	s += fmt.Sprintf(".s%s.l%s.%s",
		n.opt(types.StageInferUnits, "min_support"),
		n.opt(types.StageInferUnits, "min_unit_length"),
		n.opt(types.StageInferUnits, "read_mode"))
	if stage == types.StageInferUnits {
		return s
	}
	s += fmt.Sprintf(".c%s.r%s", n.opt(types.StageCluster, "identity"), n.opt(types.StageCluster, "length_ratio"))
	if stage == types.StageCluster {
		return s
	}
	return s + ".ext" + n.opt(types.StageExtend, "min_length")
}

func (n *Namer) at(stage types.StageName, kind Kind, file string) Artifact {
	return Artifact{Stage: stage, Kind: kind, Path: filepath.Join(n.Dir(stage), file)}
}

// For returns the artifacts stage is expected to produce. The first element
// is the stage's primary output.
func (n *Namer) For(stage types.StageName) ([]Artifact, error) {
	stem := n.stem(stage)
	switch stage {
	case types.StageSample:
		ext := ".fq.gz"
		if n.cfg.Format() == seqio.FormatFASTA {
			ext = ".fa.gz"
		}
		return []Artifact{n.at(stage, KindSampledReads, stem+ext)}, nil
	case types.StageSelfAlign:
		return []Artifact{n.at(stage, KindSelfAlignment, stem+".ava.paf")}, nil
	case types.StageInferUnits:
		return []Artifact{n.at(stage, KindInferredUnits, stem+".units.fa")}, nil
	case types.StageCluster:
		return []Artifact{
			n.at(stage, KindClusteredUnits, stem+".fa"),
			n.at(stage, KindClusterTable, stem+".fa.clstr"),
		}, nil
	case types.StageExtend:
		return []Artifact{n.at(stage, KindExtendedReference, stem+".fa")}, nil
	case types.StageRemap:
		return []Artifact{n.at(stage, KindRemapAlignment, stem+".remap.paf")}, nil
	case types.StageIntervals:
		return []Artifact{n.at(stage, KindIntervalTable, stem+".remap.bed")}, nil
	case types.StageAbundance:
		return []Artifact{n.at(stage, KindAbundanceTable, stem+".abundance.tsv")}, nil
	default:
		return nil, types.ConfigErrorf("stage", "no artifacts are defined for %q", stage)
	}
}
