// Package linalg provides the dense linear-algebra pieces the closed-loop
// pipeline needs on top of gonum: eigenvalues of a real general matrix, the
// scalar and matrix principal logarithm, and complex matrix helpers that
// gonum's CDense does not offer.
//
// The principal logarithm keeps every eigenvalue argument in (-π, π]. An
// eigenvalue on the negative real axis sits on the branch cut; it is mapped
// to ln|λ| + iπ and reported to the caller instead of being resolved
// silently.
package linalg
