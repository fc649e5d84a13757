package model

import "math"

// Orientation is an agent's body frame expressed in world axes.
type Orientation struct {
	Nose  Vec3 `json:"nose"`
	Roof  Vec3 `json:"roof"`
	Right Vec3 `json:"right"`
}

// FlatOrientation faces forward along +X with the roof pointing up.
func FlatOrientation() Orientation {
	return Orientation{Nose: Vec3{1, 0, 0}, Roof: Up, Right: Vec3{0, -1, 0}}
}

// FacingOrientation is an upright orientation with the nose along dir.
func FacingOrientation(dir Vec2) Orientation {
	nose := dir.Normalized().ToVec3()
	return Orientation{Nose: nose, Roof: Up, Right: nose.Cross(Up)}
}

// Matrix returns the rotation with nose, left and roof as columns.
func (o Orientation) Matrix() Mat3 {
	left := o.Roof.Cross(o.Nose)
	return Mat3{
		{o.Nose.X, left.X, o.Roof.X},
		{o.Nose.Y, left.Y, o.Roof.Y},
		{o.Nose.Z, left.Z, o.Roof.Z},
	}
}

// Mat3 is a row-major 3x3 rotation matrix.
type Mat3 [3][3]float64

// LookingTo builds the rotation whose forward axis is dir and whose up axis
// is as close to up as possible.
func LookingTo(dir, up Vec3) Mat3 {
	f := dir.Normalized()
	l := up.Cross(f).Normalized()
	if l.IsZero() {
		// dir is parallel to up; any perpendicular left axis will do.
		l = Vec3{0, 1, 0}.Cross(f).Normalized()
		if l.IsZero() {
			l = Vec3{1, 0, 0}.Cross(f).Normalized()
		}
	}
	u := f.Cross(l)
	return Mat3{
		{f.X, l.X, u.X},
		{f.Y, l.Y, u.Y},
		{f.Z, l.Z, u.Z},
	}
}

func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

func (m Mat3) Trace() float64 { return m[0][0] + m[1][1] + m[2][2] }

// AngleTo is the magnitude of the single rotation taking m onto o.
func (m Mat3) AngleTo(o Mat3) float64 {
	c := 0.5 * (m.Transpose().Mul(o).Trace() - 1)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
