package secscan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCanceled is returned when the user declines a confirmation.
var ErrCanceled = errors.New("canceled by user")

// CommandError reports a failed external program with a single-line
// message, typically the first line of its stderr.
type CommandError struct {
	Program string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Program, e.Message)
}

// firstLine extracts the first non-empty line of subprocess stderr for
// compact error reporting.
func firstLine(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
