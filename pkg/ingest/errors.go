package ingest

import (
	"errors"
	"fmt"
)

// ErrToolNotInstalled reports that an external conversion tool an importer
// relies on is missing from the environment. Regression checks treat it as
// a reason to skip rather than fail.
var ErrToolNotInstalled = errors.New("ingest: tool not installed")

// ToolNotInstalled wraps ErrToolNotInstalled with the name of the missing
// tool.
func ToolNotInstalled(tool string) error {
	return fmt.Errorf("%w: %s", ErrToolNotInstalled, tool)
}
