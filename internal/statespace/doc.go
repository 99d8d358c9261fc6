// Package statespace holds the plant description of a discrete-time linear
// system:
//
//	x[k+1] = A x[k] + B u[k]
//	y[k]   = C x[k] + D u[k]
//
// A [Plant] is validated once at construction and is read-only afterwards.
// Shape problems are reported as a [*DimensionError] naming the offending
// matrix, so loaders can surface a precise message to the user.
//
// # Example
//
//	plant, err := statespace.NewPlant(a, b, c, d)
//	var dimErr *statespace.DimensionError
//	if errors.As(err, &dimErr) {
//	    // dimErr.Matrix is "A", "B", "C" or "D"
//	}
package statespace
