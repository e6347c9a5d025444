package types

// Time is a simulated instant measured in ticks.
type Time int

// Duration is a span of ticks.
type Duration int

type JobID int

// NoTime marks a start or end that has not happened yet.
const NoTime = Time(-1)
