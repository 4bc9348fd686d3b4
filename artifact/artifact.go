// Package artifact names the files every stage reads and writes. Paths are a
// pure function of the RunConfig so identical configurations always resolve
// to identical locations.
package artifact

import (
	"os"

	"github.com/junhaiqi/TopoRepeat/types"
)

// Kind is the logical type of an artifact.
type Kind string

const (
	KindSampledReads      Kind = "sampled-reads"
	KindSelfAlignment     Kind = "self-alignment"
	KindInferredUnits     Kind = "inferred-units"
	KindClusteredUnits    Kind = "clustered-units"
	KindClusterTable      Kind = "cluster-table"
	KindExtendedReference Kind = "extended-reference"
	KindRemapAlignment    Kind = "remap-alignment"
	KindIntervalTable     Kind = "interval-table"
	KindAbundanceTable    Kind = "abundance-table"
)

// Artifact is a named file produced by one stage.
type Artifact struct {
	Stage types.StageName `json:"stage"`
	Kind  Kind            `json:"kind"`
	Path  string          `json:"path"`
}

// Ready reports whether the artifact exists as a non-empty regular file.
func (a Artifact) Ready() bool {
	fi, err := os.Stat(a.Path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular() && fi.Size() > 0
}
