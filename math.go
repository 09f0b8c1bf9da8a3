package orbitplane

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad   = math.Pi / 180
	minNormal = 0x1p-1022
)

// Vector3 is an immutable 3D vector. Every operation returns a new value.
type Vector3 struct {
	X, Y, Z float64
}

// NewVector3 returns a Vector3 from a 3x1 slice. Note that there is no dimension check!
func NewVector3(a []float64) Vector3 {
	return Vector3{a[0], a[1], a[2]}
}

func (v Vector3) r3() r3.Vec {
	return r3.Vec(v)
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3(r3.Add(v.r3(), o.r3()))
}

// Negate returns -v.
func (v Vector3) Negate() Vector3 {
	return v.Scale(-1)
}

// Subtract returns v - o, computed as the addition of the negation of o.
func (v Vector3) Subtract(o Vector3) Vector3 {
	return v.Add(o.Negate())
}

// Scale returns s * v.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3(r3.Scale(s, v.r3()))
}

// Dot returns the inner product.
func (v Vector3) Dot(o Vector3) float64 {
	return r3.Dot(v.r3(), o.r3())
}

// Cross returns v x o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3(r3.Cross(v.r3(), o.r3()))
}

// Length returns the Euclidean norm, without overflow or underflow of the intermediate squares.
func (v Vector3) Length() float64 {
	return r3.Norm(v.r3())
}

// Normalize returns the unit vector of v.
// A vector of length exactly zero is returned unchanged instead of turning into NaNs.
func (v Vector3) Normalize() Vector3 {
	n := v.Length()
	if n == 0 {
		return v
	}
	return Vector3{v.X / n, v.Y / n, v.Z / n}
}

// Project returns the projection of v onto target, i.e. target * (v.target / target.target).
// Projecting onto the zero vector returns the zero vector.
func (v Vector3) Project(target Vector3) Vector3 {
	if target.IsZero() {
		return Vector3{}
	}
	tt := target.Dot(target)
	vt := v.Dot(target)
	if tt >= minNormal && !math.IsInf(tt, 0) && !math.IsInf(vt, 0) {
		return target.Scale(vt / tt)
	}
	// The squares left the normal range: project onto the unit vector instead.
	u := target.Normalize()
	return u.Scale(v.Dot(u))
}

// Slice returns the vector as a 3x1 slice.
func (v Vector3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// IsZero returns whether all components are exactly zero.
func (v Vector3) IsZero() bool {
	return v == Vector3{}
}

// String implements the Stringer interface.
func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Cartesian2Spherical returns the provided Cartesian vector as (r, θ, φ),
// where θ is measured from the third axis and φ in the plane of the first two.
// The zero vector has no direction and maps to the zero vector.
func Cartesian2Spherical(a Vector3) Vector3 {
	r := a.Length()
	if r == 0 {
		return Vector3{}
	}
	return Vector3{r, math.Acos(a.Z / r), math.Atan2(a.Y, a.X)}
}

// Rad2deg converts radians to degrees in [0, 360).
func Rad2deg(a float64) float64 {
	d := math.Mod(a/deg2rad, 360)
	if d < 0 {
		d += 360
	}
	return d
}
