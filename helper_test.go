package orbitplane

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const eps = 1e-9

// vectorsEqual returns whether both vectors are equal within an absolute tolerance.
func vectorsEqual(a, b Vector3, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol) && scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// vectorsEqualRel returns whether both vectors are equal within a tolerance relative to the larger norm.
func vectorsEqualRel(a, b Vector3, tol float64) bool {
	return vectorsEqual(a, b, tol*math.Max(1, math.Max(a.Length(), b.Length())))
}

// plutoSystem is Pluto and Charon from arXiv:2502.17580, in km and km/s.
const plutoSystem = `# Pluto
X = -157.8121679944 Y = -456.7988459683 Z = -2071.4067337364
VX = -0.0177032091 VY = -0.0158015359 VZ = 0.0048362971
MASS = 1.303e22
&
# Charon
X = 1297.1743847853 Y = 3752.6022617472 Z = 17011.9058384535
VX = 0.1453959509 VY = 0.1297771902 VZ = -0.0397230040
MASS = 1.586e21
&
# Styx
X = -30572.8427772584 Y = -26535.8134344897 Z = 12311.2908958766
VX = 0.0232883189 VY = 0.0427977975 VZ = 0.1464990284
MASS = 7.5e15
`
