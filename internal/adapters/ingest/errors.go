package ingest

import (
	"errors"
	"fmt"
)

// ErrIngestion is the kind of every load-aborting failure.
var ErrIngestion = errors.New("ingestion failed")

// IngestionError reports a load that produced nothing usable: no source
// files, a file that cannot be read at all, or no usable rows.
type IngestionError struct {
	Path    string
	Details string
	Err     error
}

func (e *IngestionError) Error() string {
	msg := fmt.Sprintf("ingestion of %s failed: %s", e.Path, e.Details)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error { return e.Err }

// Is reports ErrIngestion.
func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

// Issue describes a source row that was skipped or partially used.
type Issue struct {
	File    string
	Line    int
	Reason  string
	Skipped bool
}

func (i Issue) String() string {
	if i.Skipped {
		return fmt.Sprintf("%s:%d: skipped: %s", i.File, i.Line, i.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", i.File, i.Line, i.Reason)
}
