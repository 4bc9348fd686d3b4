package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestLoadParams_Precedence(t *testing.T) {
	setupRun(t, "threads: 2\npercent: 20\ntools:\n  sample: /file/sample.py\n  cluster: /file/cd-hit-est\n")

	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("TOPOREPEAT_CLUSTER=/env/cd-hit-est\nTOPOREPEAT_REMAP=/env/minimap2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	swap(t, &envFile, envPath)
	for _, k := range []string{"TOPOREPEAT_CLUSTER", "TOPOREPEAT_REMAP"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	c := &cobra.Command{Use: "test"}
	addParamFlags(c.Flags())
	if err := c.Flags().Parse([]string{"--threads", "6", "--tool", "remap=/flag/minimap2"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	p, err := loadParams(c)
	if err != nil {
		t.Fatalf("loadParams() error: %v", err)
	}
	if p.Threads != 6 {
		t.Errorf("Threads = %d, want the flag value 6", p.Threads)
	}
	if p.Percent != 20 {
		t.Errorf("Percent = %v, want the file value 20", p.Percent)
	}
	want := map[string]string{
		"sample":  "/file/sample.py",
		"cluster": "/env/cd-hit-est",
		"remap":   "/flag/minimap2",
	}
	if diff := cmp.Diff(want, p.Tools); diff != "" {
		t.Errorf("Tools (-want +got):\n%s", diff)
	}
}

func TestApplyFlags_UnsetFlagsKeepValues(t *testing.T) {
	c := &cobra.Command{Use: "test"}
	addParamFlags(c.Flags())
	if err := c.Flags().Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, err := loadParams(nil)
	if err != nil {
		t.Fatalf("loadParams() error: %v", err)
	}
	before := p
	applyFlags(&p, c.Flags())
	if diff := cmp.Diff(before, p); diff != "" {
		t.Errorf("unset flags changed params (-before +after):\n%s", diff)
	}
}
