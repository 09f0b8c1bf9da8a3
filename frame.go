package orbitplane

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// basisDetTol is the smallest |det| accepted for a basis matrix. An orthonormal basis has |det| = 1.
	basisDetTol = 1e-9
)

// Frame is a change of basis. The forward matrix has the basis vectors as its columns and maps
// coordinates in the frame back to the original frame; its inverse is computed once and maps
// original coordinates into the frame.
type Frame struct {
	basis   [3]Vector3
	forward *mat.Dense
	inverse *mat.Dense
}

// NewFrame returns the frame for the provided basis, which must hold exactly three vectors.
// Linearly dependent vectors yield ErrDegenerateBasis.
func NewFrame(basis []Vector3) (*Frame, error) {
	if len(basis) != 3 {
		return nil, errors.Wrapf(ErrDegenerateBasis, "need 3 basis vectors, got %d", len(basis))
	}
	f := &Frame{}
	data := make([]float64, 9)
	for c, b := range basis {
		f.basis[c] = b
		data[c] = b.X
		data[3+c] = b.Y
		data[6+c] = b.Z
	}
	f.forward = mat.NewDense(3, 3, data)
	if det := mat.Det(f.forward); math.IsNaN(det) || math.Abs(det) < basisDetTol {
		return nil, errors.Wrapf(ErrDegenerateBasis, "basis determinant is %g", det)
	}
	f.inverse = mat.NewDense(3, 3, nil)
	if err := f.inverse.Inverse(f.forward); err != nil {
		return nil, errors.Wrapf(ErrDegenerateBasis, "inverting basis: %s", err)
	}
	return f, nil
}

// Transform returns v expressed in the frame.
func (f *Frame) Transform(v Vector3) Vector3 {
	return MxV33(f.inverse, v)
}

// Restore returns v, expressed in the frame, back in the original coordinates.
func (f *Frame) Restore(v Vector3) Vector3 {
	return MxV33(f.forward, v)
}

// Basis returns the axes of the frame in the original coordinates.
func (f *Frame) Basis() []Vector3 {
	return []Vector3{f.basis[0], f.basis[1], f.basis[2]}
}

// Normal returns the third axis, i.e. the normal of the plane of the first two.
func (f *Frame) Normal() Vector3 {
	return f.basis[2]
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame%v\n%v", f.Basis(), mat.Formatted(f.inverse, mat.Prefix("")))
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v Vector3) Vector3 {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(3, v.Slice()))
	return Vector3{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}
