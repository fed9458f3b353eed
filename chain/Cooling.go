package chain

import "math"

// DefaultPlateaus is the number of cooling plateaus the source hard-
// coded (i = 1..27, a loop bound of 28). spec.md §9 flags that bound as
// arbitrary; CoolingSchedule takes it as a parameter instead.
const DefaultPlateaus = 27

// CoolingSchedule returns the piecewise-constant Simulated Annealing
// temperature at each discrete time step, built from τ[0]=1,
// τ[i] = τ[i-1] + exp(0.25*(i+1)) for i in [1, plateaus]: every integer
// time in [⌊τ[i-1]⌋, ⌊τ[i]⌋) gets temperature 1/(i+1) (spec.md §4.8).
func CoolingSchedule(plateaus int) []float64 {
	if plateaus < 1 {
		plateaus = DefaultPlateaus
	}

	tau := make([]float64, plateaus+1)
	tau[0] = 1
	for i := 1; i <= plateaus; i++ {
		tau[i] = tau[i-1] + math.Exp(0.25*float64(i+1))
	}

	var schedule []float64
	for i := 1; i <= plateaus; i++ {
		start := int(math.Floor(tau[i-1]))
		end := int(math.Floor(tau[i]))
		temperature := 1.0 / float64(i+1)
		for t := start; t < end; t++ {
			schedule = append(schedule, temperature)
		}
	}
	return schedule
}
