/*
Package rmsd finds best-fit rotations between paired sets of 3D points and
the RMSD that remains after superposition.

Two interchangeable backends are provided behind the Superposer interface:
Kabsch, a version of the Kabsch algorithm described in detail here:
http://cnx.org/content/m11608/latest/ (3x3 covariance matrix plus a
self-contained 3x3 SVD), and QCP, a translation of Theobald's
quaternion-based characteristic polynomial method.

Both report ErrDegenerate when the best-fit rotation is not unique.
*/
package rmsd
