package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func TestCorrectionAngle(t *testing.T) {
	// Facing +X and wanting +Y is a left (counter-clockwise) turn.
	assert.InDelta(t, math.Pi/2, Vec2{1, 0}.CorrectionAngle(Vec2{0, 1}), delta)
	// Facing +X and wanting -Y is a right turn.
	assert.InDelta(t, -math.Pi/2, Vec2{1, 0}.CorrectionAngle(Vec2{0, -1}), delta)
	// Wrapping picks the short way round.
	assert.InDelta(t, -math.Pi/4, Vec2{-1, 1}.CorrectionAngle(Vec2{0, 1}), delta)
	assert.InDelta(t, math.Pi/2, Vec2{0, -1}.CorrectionAngle(Vec2{1, 0}), delta)
}

func TestRotateTowardsCapsAngle(t *testing.T) {
	v := Vec2{10, 0}
	got := v.RotateTowards(Vec2{0, 1}, math.Pi/4)
	assert.InDelta(t, 10.0, got.Magnitude(), delta)
	assert.InDelta(t, math.Pi/4, Vec2{1, 0}.CorrectionAngle(got), delta)

	// Within the cap the rotation lands exactly on target.
	got = v.RotateTowards(Vec2{1, 1}, math.Pi/2)
	assert.InDelta(t, 0, got.Normalized().CorrectionAngle(Vec2{1, 1}), delta)
}

func TestProjectAndOrthogonal(t *testing.T) {
	v := Vec2{3, 4}
	dir := Vec2{1, 0}
	assert.Equal(t, Vec2{3, 0}, v.Project(dir))
	assert.Equal(t, Vec2{0, -1}, dir.Orthogonal())
	assert.Equal(t, Vec2{}, v.Project(Vec2{}))
}

func TestDirectionRejectsZero(t *testing.T) {
	_, err := Vec3{}.Direction()
	require.ErrorIs(t, err, ErrZeroVector)

	d, err := Vec3{0, 0, 5}.Direction()
	require.NoError(t, err)
	assert.Equal(t, Up, d)
}

func TestMatrixAngleTo(t *testing.T) {
	flat := FlatOrientation().Matrix()
	assert.InDelta(t, 0, flat.AngleTo(LookingTo(Vec3{1, 0, 0}, Up)), 1e-7)
	assert.InDelta(t, math.Pi/2, flat.AngleTo(LookingTo(Vec3{0, 1, 0}, Up)), 1e-7)
	assert.InDelta(t, math.Pi, flat.AngleTo(LookingTo(Vec3{-1, 0, 0}, Up)), 1e-7)
}

func TestPathMotionAt(t *testing.T) {
	p := Path{
		{Time: 0, Position: Vec3{0, 0, 0}},
		{Time: 1, Position: Vec3{10, 0, 0}},
	}
	s, ok := p.MotionAt(0.5)
	require.True(t, ok)
	assert.InDelta(t, 5, s.Position.X, delta)

	_, ok = p.MotionAt(2)
	assert.False(t, ok)
	assert.Equal(t, 10.0, p.MotionAtOrEnd(2).Position.X)
}
