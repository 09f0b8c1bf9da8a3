package orbitplane

import (
	"fmt"
)

// Body is a gravitating body: a state vector and a mass in kg.
// Its identity is its index in the list it belongs to.
type Body struct {
	Position Vector3
	Velocity Vector3
	Mass     float64
}

// AngularMomentum returns the specific angular momentum r x v about the origin.
func (b Body) AngularMomentum() Vector3 {
	return b.Position.Cross(b.Velocity)
}

// Inclination returns the inclination in degrees of the angular momentum with respect to the
// third axis of the coordinates the body is expressed in. 0 means prograde in the plane of the
// first two axes, 180 retrograde. A body without angular momentum has zero inclination.
func (b Body) Inclination() float64 {
	return Rad2deg(Cartesian2Spherical(b.AngularMomentum()).Y)
}

// InFrame returns a copy of the body with its state expressed in the provided frame.
func (b Body) InFrame(f *Frame) Body {
	return Body{Position: f.Transform(b.Position), Velocity: f.Transform(b.Velocity), Mass: b.Mass}
}

// Equals returns whether the provided body is the same.
func (b Body) Equals(o Body) bool {
	return b == o
}

// String implements the Stringer interface.
func (b Body) String() string {
	return fmt.Sprintf("m=%g kg r=%s v=%s", b.Mass, b.Position, b.Velocity)
}
