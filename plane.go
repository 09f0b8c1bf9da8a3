package orbitplane

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// collinearTol is the smallest ratio of the second to the first singular value of the
	// centered points for them to span a plane.
	collinearTol = 1e-12
	// axisTol is the smallest residual of a coordinate axis against the plane normal for it to
	// be used as the first in-plane axis.
	axisTol = 1e-6
)

// Centroid returns the point the fitted plane passes through: the mean of the positions, and of
// the position plus velocity of every body when there are fewer than three of them.
func Centroid(bodies []Body) Vector3 {
	var sum Vector3
	pts := fitPoints(bodies)
	for _, p := range pts {
		sum = sum.Add(p)
	}
	if len(pts) == 0 {
		return sum
	}
	return sum.Scale(1 / float64(len(pts)))
}

func fitPoints(bodies []Body) []Vector3 {
	pts := make([]Vector3, 0, 2*len(bodies))
	for _, b := range bodies {
		pts = append(pts, b.Position)
	}
	if len(bodies) < 3 {
		for _, b := range bodies {
			pts = append(pts, b.Position.Add(b.Velocity))
		}
	}
	return pts
}

// FitPlane returns the frame of the least-squares plane through the bodies, and the centroid the
// plane passes through. The normal is the third axis of the frame and points to the side of up
// (unless up lies in the plane); the first axis is the projection of the first coordinate axis
// onto the plane (or of the second one if the first is along the normal).
// Points that do not span a plane yield ErrDegenerateBasis.
func FitPlane(bodies []Body, up Vector3) (*Frame, Vector3, error) {
	if len(bodies) == 0 {
		return nil, Vector3{}, errors.Wrap(ErrConfig, "no bodies")
	}
	centroid := Centroid(bodies)
	pts := fitPoints(bodies)
	m := mat.NewDense(3, len(pts), nil)
	for j, p := range pts {
		c := p.Subtract(centroid)
		m.Set(0, j, c.X)
		m.Set(1, j, c.Y)
		m.Set(2, j, c.Z)
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return nil, Vector3{}, errors.Wrap(ErrDegenerateBasis, "plane fit did not converge")
	}
	vals := svd.Values(nil)
	if len(vals) < 2 || vals[0] == 0 || vals[1] <= collinearTol*vals[0] {
		return nil, Vector3{}, errors.Wrapf(ErrDegenerateBasis, "points are collinear, singular values %v", vals)
	}
	var u mat.Dense
	svd.UTo(&u)
	col := func(j int) Vector3 {
		return Vector3{u.At(0, j), u.At(1, j), u.At(2, j)}
	}
	normal := col(0).Cross(col(1)).Normalize()
	if normal.Dot(up) < 0 {
		normal = normal.Negate()
	}

	var first Vector3
	for _, axis := range []Vector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		r := axis.Subtract(axis.Project(normal))
		if r.Length() > axisTol {
			first = r.Normalize()
			break
		}
	}
	frame, err := NewFrame([]Vector3{first, normal.Cross(first), normal})
	if err != nil {
		return nil, Vector3{}, err
	}
	return frame, centroid, nil
}
