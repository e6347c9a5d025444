package types

import (
	"fmt"
	"strings"
)

// PolicyKind enumerates the scheduling policies. Every switch over it must stay exhaustive.
type PolicyKind int

const (
	FIFO PolicyKind = iota
	FIFOCapped
	RoundRobin
	EDF
	EDFCapped
	RMS
	Wavefront
	CPM
)

var policyKeywords = map[PolicyKind]string{
	FIFO:       "fifo",
	FIFOCapped: "fifo_capped",
	RoundRobin: "rr",
	EDF:        "edf",
	EDFCapped:  "edf_capped",
	RMS:        "rms",
	Wavefront:  "wavefront",
	CPM:        "cpm",
}

// PolicyKinds lists every policy in declaration order.
func PolicyKinds() []PolicyKind {
	return []PolicyKind{FIFO, FIFOCapped, RoundRobin, EDF, EDFCapped, RMS, Wavefront, CPM}
}

func (k PolicyKind) String() string {
	if s, ok := policyKeywords[k]; ok {
		return s
	}
	return fmt.Sprintf("PolicyKind(%d)", int(k))
}

// Preemptive reports whether the policy may take a running job off its server.
func (k PolicyKind) Preemptive() bool {
	switch k {
	case RoundRobin, EDF, EDFCapped, RMS:
		return true
	default:
		return false
	}
}

// DependencyAware reports whether the policy consumes the dependency set.
func (k PolicyKind) DependencyAware() bool {
	return k == Wavefront || k == CPM
}

// ParsePolicyKind maps a lowercase keyword to its policy. A few aliases of the keywords are accepted.
func ParsePolicyKind(s string) (PolicyKind, error) {
	keyword := strings.ToLower(strings.TrimSpace(s))
	switch keyword {
	case "edf_energy", "edf-capped":
		return EDFCapped, nil
	case "fifo_energy", "fifo-capped":
		return FIFOCapped, nil
	case "round_robin", "roundrobin":
		return RoundRobin, nil
	case "critical_path":
		return CPM, nil
	}
	for kind, kw := range policyKeywords {
		if kw == keyword {
			return kind, nil
		}
	}
	return FIFO, fmt.Errorf("unknown scheduling policy %q", s)
}
