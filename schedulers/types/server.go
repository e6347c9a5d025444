package types

import "fmt"

type ServerID string

// Frequency is one operating point of a server. Only the ratio between frequencies matters.
type Frequency int

// Power is an instantaneous draw in watts.
type Power float64

// Energy is power integrated over ticks.
type Energy float64

func (p Power) String() string {
	return fmt.Sprintf("%.1fW", float64(p))
}

func (e Energy) String() string {
	return fmt.Sprintf("%.1fJ", float64(e))
}
