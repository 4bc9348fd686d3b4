package stages

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/seqio"
	"github.com/junhaiqi/TopoRepeat/types"
)

const fastaLineWidth = 80

// ExtendStage turns each cluster representative into a tandem reference: the
// unit is put in canonical orientation and phase, then repeated until it is at
// least min_length long and holds two or more copies. It runs in-process.
type ExtendStage struct{}

func (s *ExtendStage) Name() types.StageName { return types.StageExtend }

func (s *ExtendStage) Requires() []artifact.Kind {
	return []artifact.Kind{artifact.KindClusteredUnits}
}

func (s *ExtendStage) Produces() []artifact.Kind {
	return []artifact.Kind{artifact.KindExtendedReference}
}

func (s *ExtendStage) Outputs(n *artifact.Namer) ([]artifact.Artifact, error) {
	return n.For(types.StageExtend)
}

// Execute writes its diagnostics to the stage log like an external tool
// would, so a failure always points at a log file.
func (s *ExtendStage) Execute(ctx context.Context, rc *pipeline.RunContext) (err error) {
	logPath := rc.Namer.LogPath(types.StageExtend)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	defer func() {
		if err != nil {
			fmt.Fprintf(logFile, "error: %v\n", err) //nolint:errcheck
		}
	}()
	return extend(ctx, rc, logFile, logPath)
}

func extend(ctx context.Context, rc *pipeline.RunContext, log io.Writer, logPath string) error {
	in, err := paths(rc, artifact.KindClusteredUnits, artifact.KindExtendedReference)
	if err != nil {
		return err
	}
	src, dst := in[0], in[1]
	minLen := int(rc.Config.Int(types.StageExtend, "min_length"))
	fmt.Fprintf(log, "$ extend (in-process) -i %s -o %s -l %d\n", src, dst, minLen) //nolint:errcheck

	recs, err := seqio.ReadFASTAFile(src)
	if err != nil {
		return err
	}
	out := make([]seqio.Record, 0, len(recs))
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(r.Seq) == 0 {
			fmt.Fprintf(log, "dropped %s: empty sequence\n", r.ID) //nolint:errcheck
			continue
		}
		out = append(out, seqio.Record{ID: r.ID, Seq: Tandem(Canonical(r.Seq), minLen)})
	}
	fmt.Fprintf(log, "read %d representatives, extended %d, dropped %d\n", len(recs), len(out), len(recs)-len(out)) //nolint:errcheck
	if len(out) == 0 {
		return &types.EmptyOutputError{Stage: types.StageExtend, Path: dst, LogPath: logPath}
	}

	if err := writeFASTA(dst, out); err != nil {
		return err
	}
	rc.Log().Debug("extended cluster representatives", map[string]any{
		"stage":   string(types.StageExtend),
		"units":   len(out),
		"dropped": len(recs) - len(out),
	})
	return nil
}

func writeFASTA(path string, recs []seqio.Record) error {
	partial := path + ".partial"
	fh, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("creating %s: %w", partial, err)
	}
	if err := seqio.WriteFASTA(fh, recs, fastaLineWidth); err != nil {
		fh.Close()
		os.Remove(partial)
		return fmt.Errorf("writing %s: %w", partial, err)
	}
	if err := fh.Close(); err != nil {
		os.Remove(partial)
		return fmt.Errorf("closing %s: %w", partial, err)
	}
	return os.Rename(partial, path)
}

// Canonical returns the lexicographically smallest rotation of seq or of its
// reverse complement. Bases are upper-cased first.
func Canonical(seq []byte) []byte {
	fwd := bytes.ToUpper(seq)
	best := rotate(fwd, leastRotation(fwd))
	rev := ReverseComplement(fwd)
	if alt := rotate(rev, leastRotation(rev)); bytes.Compare(alt, best) < 0 {
		best = alt
	}
	return best
}

// Tandem concatenates copies of unit until the result is at least minLen
// long and contains at least two copies.
func Tandem(unit []byte, minLen int) []byte {
	if len(unit) == 0 {
		return nil
	}
	copies := max(2, (minLen+len(unit)-1)/len(unit))
	return bytes.Repeat(unit, copies)
}

var complement = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	for _, p := range []string{"AT", "TA", "CG", "GC", "at", "ta", "cg", "gc"} {
		t[p[0]] = p[1]
	}
	return t
}()

// ReverseComplement returns the reverse complement of seq. Anything other
// than ACGT becomes N.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complement[b]
	}
	return out
}

func rotate(s []byte, k int) []byte {
	out := make([]byte, 0, len(s))
	out = append(out, s[k:]...)
	return append(out, s[:k]...)
}

// leastRotation is Booth's algorithm: the start index of the lexicographically
// least rotation of s in linear time.
func leastRotation(s []byte) int {
	n := len(s)
	if n == 0 {
		return 0
	}
	f := make([]int, 2*n)
	for i := range f {
		f[i] = -1
	}
	k := 0
	for j := 1; j < 2*n; j++ {
		sj := s[j%n]
		i := f[j-k-1]
		for i != -1 && sj != s[(k+i+1)%n] {
			if sj < s[(k+i+1)%n] {
				k = j - i - 1
			}
			i = f[i]
		}
		if i == -1 && sj != s[(k+i+1)%n] {
			if sj < s[(k+i+1)%n] {
				k = j
			}
			f[j-k] = -1
		} else {
			f[j-k] = i + 1
		}
	}
	return k % n
}
