package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const lockName = ".toporepeat.lock"

// acquireLock claims outDir for this process. Concurrent runs against one
// output tree are refused.
func acquireLock(outDir string) (release func(), err error) {
	path := filepath.Join(outDir, lockName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			holder := "unknown"
			if data, rerr := os.ReadFile(path); rerr == nil {
				holder = strings.TrimSpace(string(data))
			}
			return nil, fmt.Errorf("output directory %s is in use by pid %s (remove %s if that process is gone)", outDir, holder, path)
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}
	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing lock file: %w", werr)
	}
	return func() { os.Remove(path) }, nil
}
