package mindist

import "errors"

// ErrInvalidInput is wrapped by every error caused by arguments that do not
// fit the topology or box: configurations of the wrong length, permutations
// that are not bijections within permutation groups, non-positive box
// lengths or invalid options.
var ErrInvalidInput = errors.New("mindist: invalid input")

// ErrDegenerate is returned by MinPermDist when no seed yields a well
// defined rotation, e.g., when every body has collinear sites.
var ErrDegenerate = errors.New("mindist: no seed has a well defined " +
	"rotation")
