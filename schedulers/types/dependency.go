package types

import "fmt"

// Dependency states that Predecessor must finish before Successor may start.
type Dependency struct {
	Predecessor JobID
	Successor   JobID
}

func (d Dependency) String() string {
	return fmt.Sprintf("%d - %d", d.Predecessor, d.Successor)
}
