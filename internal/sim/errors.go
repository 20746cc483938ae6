package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every lookup of an id absent from the level.
	ErrNotFound = errors.New("sim: not found")

	// ErrConfiguration is matched by every fatal integrity failure.
	ErrConfiguration = errors.New("sim: configuration error")
)

// NotFoundError reports a lookup of an unknown node, edge, agent or hazard.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sim: %s %q not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConfigError is a fatal level-integrity failure. The simulation refuses to
// proceed once one has been returned.
type ConfigError struct {
	Code    string
	Message string
}

// Configuration error codes.
const (
	CodeMissingRef    = "MISSING_REF"
	CodeDuplicateID   = "DUPLICATE_ID"
	CodeBranchNoEdges = "BRANCH_NO_EDGES"
	CodeUnroutedFork  = "UNROUTED_FORK"
	CodeBadDefault    = "BAD_DEFAULT_INDEX"
	CodeSpawnEdges    = "SPAWN_EDGE_COUNT"
	CodeDeadEnd       = "DEAD_END"
	CodeRequiredCount = "REQUIRED_ARRIVALS"
	CodeBadHazard     = "BAD_HAZARD"
	CodeBadAgent      = "BAD_AGENT"
)

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sim: [%s] %s", e.Code, e.Message)
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(code, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
}
