package template

import (
	"fmt"
	"strings"
)

// NotFoundError means no asset in the release matched the requested
// assistant and script type. It carries every available asset name so the
// user can see what the release actually ships.
type NotFoundError struct {
	Assistant  Assistant
	ScriptType ScriptType
	Available  []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no template asset matches %s-%s (available: %s)",
		e.Assistant, e.ScriptType, strings.Join(e.Available, ", "))
}

// ExtractionError is a failure while unpacking or placing the template:
// corrupt archive, unsupported format, destination conflict, or a
// filesystem failure. The target directory is never left partially
// overwritten when this is returned.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
