package model

import (
	"errors"
	"math"
)

// ErrZeroVector is returned when a direction is required but the vector has no length.
var ErrZeroVector = errors.New("zero-length vector has no direction")

// Vec2 is a point or direction on the arena floor.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2          { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2          { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2     { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64       { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Magnitude() float64       { return math.Hypot(v.X, v.Y) }
func (v Vec2) MagnitudeSquared() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Distance(o Vec2) float64  { return v.Sub(o).Magnitude() }
func (v Vec2) IsZero() bool             { return v.X == 0 && v.Y == 0 }
func (v Vec2) ToVec3() Vec3             { return Vec3{v.X, v.Y, 0} }

// Normalized returns the unit vector, or the zero vector when v has no length.
func (v Vec2) Normalized() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Scale(1 / m)
}

// ScaledToMagnitude keeps the direction and sets the length.
func (v Vec2) ScaledToMagnitude(m float64) Vec2 {
	return v.Normalized().Scale(m)
}

// CorrectionAngle is the signed angle that rotates v onto target.
// Positive values are counter-clockwise (a left turn when Y points forward-left).
func (v Vec2) CorrectionAngle(target Vec2) float64 {
	current := math.Atan2(v.Y, v.X)
	ideal := math.Atan2(target.Y, target.X)
	return WrapAngle(ideal - current)
}

// Rotate rotates v counter-clockwise by angle radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	s, c := math.Sincos(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// RotateTowards rotates v toward target by at most maxAngle, keeping v's length.
func (v Vec2) RotateTowards(target Vec2, maxAngle float64) Vec2 {
	angle := v.CorrectionAngle(target)
	if math.Abs(angle) > maxAngle {
		angle = math.Copysign(maxAngle, angle)
	}
	return v.Rotate(angle)
}

// Orthogonal returns v rotated a quarter turn clockwise.
func (v Vec2) Orthogonal() Vec2 { return Vec2{v.Y, -v.X} }

// Project returns the component of v that lies along onto.
func (v Vec2) Project(onto Vec2) Vec2 {
	d := onto.MagnitudeSquared()
	if d == 0 {
		return Vec2{}
	}
	return onto.Scale(v.Dot(onto) / d)
}

// AngleBetween is the unsigned angle between two vectors, in [0, π].
func AngleBetween(a, b Vec2) float64 {
	return math.Abs(a.CorrectionAngle(b))
}

// WrapAngle maps an angle into (-π, π].
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Vec3 is a point or direction in arena space. Z is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Up is the world up axis.
var Up = Vec3{0, 0, 1}

func (v Vec3) Add(o Vec3) Vec3        { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3        { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3   { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64     { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Magnitude() float64     { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Magnitude() }
func (v Vec3) Flatten() Vec2          { return Vec2{v.X, v.Y} }
func (v Vec3) IsZero() bool           { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalized returns the unit vector, or the zero vector when v has no length.
func (v Vec3) Normalized() Vec3 {
	m := v.Magnitude()
	if m == 0 {
		return Vec3{}
	}
	return v.Scale(1 / m)
}

// Direction is Normalized with the zero case reported as ErrZeroVector.
func (v Vec3) Direction() (Vec3, error) {
	if v.IsZero() {
		return Vec3{}, ErrZeroVector
	}
	return v.Normalized(), nil
}

// ScaledToMagnitude keeps the direction and sets the length.
func (v Vec3) ScaledToMagnitude(m float64) Vec3 {
	return v.Normalized().Scale(m)
}
