// Package seqio reads and writes the small FASTA files exchanged between
// stages, and sniffs the format of raw read files.
package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is a sequence file format.
type Format string

const (
	FormatFASTA Format = "fasta"
	FormatFASTQ Format = "fastq"
)

type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens path for reading, transparently decompressing gzip input
// detected by magic number or by a .gz suffix.
func Open(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := io.ReadFull(fh, sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// Sniff reports the format of a read file from its first non-blank byte:
// '>' is FASTA, '@' is FASTQ.
func Sniff(path string) (Format, error) {
	rc, err := Open(path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return "", fmt.Errorf("%s: empty file", path)
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '>':
			return FormatFASTA, nil
		case '@':
			return FormatFASTQ, nil
		default:
			return "", fmt.Errorf("%s: cannot detect format (not FASTA/FASTQ)", path)
		}
	}
}
