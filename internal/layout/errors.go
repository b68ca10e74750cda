package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateSource means two links point at the same audio file.
	ErrDuplicateSource = errors.New("duplicate source path")

	// ErrDuplicateDestination means two files would land on the same path.
	ErrDuplicateDestination = errors.New("duplicate destination path")

	// ErrLocked means another run holds the library lock.
	ErrLocked = errors.New("library is locked by another run")
)

// Collision lists the sources that map to one destination.
type Collision struct {
	Destination string
	Sources     []string
}

// CollisionError reports every destination collision of a plan. It matches
// ErrDuplicateDestination with errors.Is.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		parts[i] = fmt.Sprintf("%s <- %s", c.Destination, strings.Join(c.Sources, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrDuplicateDestination, strings.Join(parts, "; "))
}

func (e *CollisionError) Unwrap() error {
	return ErrDuplicateDestination
}
