package pipeline

import (
	"fmt"
	"strings"

	"github.com/junhaiqi/TopoRepeat/types"
)

// StageError identifies the stage that halted the pipeline and where its
// diagnostic log lives.
type StageError struct {
	Stage   types.StageName
	LogPath string
	Err     error
}

// Error names the stage and the log once, even when the wrapped error
// already mentions them.
func (e *StageError) Error() string {
	msg := e.Err.Error()
	if prefix := fmt.Sprintf("stage %s:", e.Stage); !strings.HasPrefix(msg, prefix) {
		msg = prefix + " " + msg
	}
	if e.LogPath != "" && !strings.Contains(msg, e.LogPath) {
		msg += fmt.Sprintf(" (see %s)", e.LogPath)
	}
	return msg
}

func (e *StageError) Unwrap() error { return e.Err }
