package cli

import (
	"github.com/google/uuid"
)

// RunIDGenerator produces the identifier attached to every log line and
// JSON response of one invocation.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so log lines of
// successive runs sort by start time.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
