package types

import (
	"fmt"
	"strings"
)

// ValidationError reports every constraint violated by a network definition.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	buf := fmt.Sprintf("invalid network definition: %d violation(s)", len(e.Violations))
	for _, v := range e.Violations {
		buf += "\n- " + v
	}
	return buf
}

func (e *ValidationError) add(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// TopologyError is a structural defect of the topology graph,
// such as a dangling data path reference or a broken 1:1 gNB/UE pairing.
type TopologyError struct {
	Reason string
}

func (e *TopologyError) Error() string {
	return "topology error: " + e.Reason
}

func NewTopologyError(format string, args ...interface{}) *TopologyError {
	return &TopologyError{Reason: fmt.Sprintf(format, args...)}
}

// Contains reports whether any violation message includes substr.
func (e *ValidationError) Contains(substr string) bool {
	for _, v := range e.Violations {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}
