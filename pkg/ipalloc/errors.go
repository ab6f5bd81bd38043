package ipalloc

import "fmt"

// ConflictError is a collision between two name/number bindings.
type ConflictError struct {
	Record   string
	Existing string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("address conflict: %s collides with %s", e.Record, e.Existing)
}

// CapacityError means the address space or a network's host range is exhausted.
type CapacityError struct {
	Scope string
	Limit string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("address capacity exceeded in %s (%s)", e.Scope, e.Limit)
}
