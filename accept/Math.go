package accept

import "math"

func logUniform(u float64) float64 {
	return math.Log(u)
}

func logJumpRatio(jumpRatio float64) float64 {
	return math.Log(jumpRatio)
}
