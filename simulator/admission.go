package simulator

import (
	"github.com/iscas-system/powersched/schedulers/types"
)

// EnergyCost is the energy job needs on server: its duration at the top frequency times the
// power the server draws while running it.
func EnergyCost(job *Job, server *Server) types.Energy {
	return types.Energy(server.DurationOn(job) * float64(server.DrawFor()))
}

// EnergyCapExceeded reports whether spending cost on top of consumed breaks the run's energy cap.
// A zero cap is unlimited.
func EnergyCapExceeded(consumed, energyCap, cost types.Energy) bool {
	return energyCap > 0 && consumed+cost > energyCap
}

// PowerCapExceeded reports whether server running at its maximum power next to busyPower,
// the draw of every other busy server, breaks the power cap. A zero cap is unlimited.
func PowerCapExceeded(busyPower, powerCap types.Power, server *Server) bool {
	return powerCap > 0 && busyPower+server.MaxPower() > powerCap
}
