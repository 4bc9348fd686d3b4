package seqio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// Record is one FASTA entry.
type Record struct {
	ID  string
	Seq []byte
}

// ReadFASTA parses every record from r. Sequence lines are concatenated and
// the header is cut at the first whitespace.
func ReadFASTA(r io.Reader) ([]Record, error) {
	var (
		recs []Record
		cur  *Record
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			id := string(b[1:])
			if i := bytes.IndexAny(b[1:], " \t"); i >= 0 {
				id = string(b[1 : 1+i])
			}
			recs = append(recs, Record{ID: id})
			cur = &recs[len(recs)-1]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: sequence data before first header", line)
		}
		cur.Seq = append(cur.Seq, b...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// ReadFASTAFile opens path (gzip aware) and parses it.
func ReadFASTAFile(path string) ([]Record, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := ReadFASTA(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return recs, nil
}

// WriteFASTA writes recs to w wrapping sequence lines at width (0 = no wrap).
func WriteFASTA(w io.Writer, recs []Record, width int) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := fmt.Fprintf(bw, ">%s\n", r.ID); err != nil {
			return err
		}
		seq := r.Seq
		line := width
		if line <= 0 {
			line = len(seq)
		}
		for len(seq) > 0 {
			n := min(line, len(seq))
			if _, err := bw.Write(seq[:n]); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
			seq = seq[n:]
		}
	}
	return bw.Flush()
}

// CountFASTA returns the number of records in the FASTA file at path.
func CountFASTA(path string) (int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer fh.Close()
	n := 0
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		if b := sc.Bytes(); len(b) > 0 && b[0] == '>' {
			n++
		}
	}
	return n, sc.Err()
}
