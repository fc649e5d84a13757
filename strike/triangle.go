package strike

import "math"

// Triangle holds three sides and their opposite angles.
type Triangle struct {
	SideA, SideB, SideC    float64
	AngleA, AngleB, AngleC float64
}

// SideSideAngle solves a triangle from two sides and the angle opposite the
// first. The bool is false when no triangle fits or the result is degenerate.
func SideSideAngle(sideA, sideB, angleA float64) (Triangle, bool) {
	if sideA <= 0 || sideB < 0 {
		return Triangle{}, false
	}
	sinA := math.Sin(angleA)
	ratio := sideB * sinA / sideA
	if ratio > 1 || ratio < -1 {
		return Triangle{}, false
	}
	angleB := math.Asin(ratio)
	angleC := math.Pi - angleA - angleB
	if angleC <= 0 || sinA == 0 {
		return Triangle{}, false
	}
	return Triangle{
		SideA:  sideA,
		SideB:  sideB,
		SideC:  sideA * math.Sin(angleC) / sinA,
		AngleA: angleA,
		AngleB: angleB,
		AngleC: angleC,
	}, true
}
