// Package geom provides the small amount of 3D vector math the recorder
// and replay engine need: component-wise deltas for threshold tests, linear
// blending for positions, and spherical blending for direction vectors.
//
// Heavy lifting delegates to gonum's spatial/r3 package; Vec3 exists as a
// separate type so the persisted document schema (lowercase x/y/z keys)
// stays decoupled from gonum's representation.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3-component vector. The JSON tags match the persisted
// trajectory document schema.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// nearParallelDot is the |cos| above which Slerp falls back to linear
// blending. Beyond this the angle between the inputs is too small for the
// sin-ratio formulation to be numerically stable.
const nearParallelDot = 0.9995

func (v Vec3) r3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromR3(v r3.Vec) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Sub returns v - u.
func (v Vec3) Sub(u Vec3) Vec3 {
	return fromR3(r3.Sub(v.r3(), u.r3()))
}

// Dot returns the dot product of v and u.
func (v Vec3) Dot(u Vec3) float64 {
	return r3.Dot(v.r3(), u.r3())
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return r3.Norm(v.r3())
}

// Unit returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Unit() Vec3 {
	if v == (Vec3{}) {
		return v
	}
	return fromR3(r3.Unit(v.r3()))
}

// ExceedsPerAxis reports whether any component of v - u differs by more
// than threshold in absolute value. This is the per-axis delta test used
// for threshold-based sampling, deliberately not a Euclidean distance.
func (v Vec3) ExceedsPerAxis(u Vec3, threshold float64) bool {
	return math.Abs(v.X-u.X) > threshold ||
		math.Abs(v.Y-u.Y) > threshold ||
		math.Abs(v.Z-u.Z) > threshold
}

// Lerp linearly blends from a to b. t is clamped to [0, 1], so t=0 returns
// a exactly and t=1 returns b exactly.
func Lerp(a, b Vec3, t float64) Vec3 {
	t = clamp01(t)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	av, bv := a.r3(), b.r3()
	return fromR3(r3.Add(r3.Scale(1-t, av), r3.Scale(t, bv)))
}

// Slerp spherically blends between two direction vectors, preserving
// angular velocity along the arc. Inputs need not be unit length; the
// result interpolates length linearly. Near-parallel or degenerate inputs
// fall back to Lerp.
func Slerp(a, b Vec3, t float64) Vec3 {
	t = clamp01(t)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}

	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return Lerp(a, b, t)
	}

	cos := a.Dot(b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	if math.Abs(cos) > nearParallelDot {
		return Lerp(a, b, t)
	}

	theta := math.Acos(cos)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta

	ua, ub := a.Unit().r3(), b.Unit().r3()
	dir := r3.Add(r3.Scale(wa, ua), r3.Scale(wb, ub))
	length := na + t*(nb-na)
	return fromR3(r3.Scale(length, r3.Unit(dir)))
}

// LerpScalar linearly blends from a to b with t clamped to [0, 1].
func LerpScalar(a, b, t float64) float64 {
	t = clamp01(t)
	return a + t*(b-a)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
