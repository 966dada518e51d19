package utils

import (
	"math"

	"skirmish/domain"
)

func FiniteVec(v domain.Vec2) bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// FiniteOr は v が有限ならそれを、そうでなければ fallback を返します。
func FiniteOr(v, fallback domain.Vec2) domain.Vec2 {
	if FiniteVec(v) {
		return v
	}
	return fallback
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
