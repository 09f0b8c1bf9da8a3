package orbitplane

// Orthonormalize returns the orthonormal basis spanned by the seeds, using classical Gram-Schmidt.
// Each seed has its projection onto every previously produced (not yet normalized) vector
// subtracted, in seed order, and all vectors are normalized in a final pass. The output has the
// same length and order as the seeds.
//
// Linear independence of the seeds is NOT verified. Nearly parallel seeds leave a residual of
// near-zero length whose normalization amplifies rounding noise; exactly dependent seeds leave a
// zero vector, which Normalize returns unchanged and NewFrame rejects as ErrDegenerateBasis.
func Orthonormalize(seeds ...Vector3) []Vector3 {
	out := make([]Vector3, 0, len(seeds))
	for _, v := range seeds {
		cur := v
		for _, u := range out {
			cur = cur.Subtract(v.Project(u))
		}
		out = append(out, cur)
	}
	for i, u := range out {
		out[i] = u.Normalize()
	}
	return out
}
