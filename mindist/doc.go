/*
Package mindist finds the distance between two configurations of rigid bodies
in a periodic box, up to the operations that leave the physics unchanged:
global rotation, global translation, periodic images and permutations of
identical bodies.

There are three layers. A Measure scores two configurations as they stand,
using the minimum image convention for centers and comparing orientations by
the site geometry they produce. A Transform moves, rotates and relabels the
bodies of a configuration in place. ExactMatch and MinPermDist search over
transforms of the second configuration: ExactMatch answers whether the two
are the same structure, and MinPermDist returns the smallest distance it can
find together with the aligned pair.

The search in MinPermDist is stochastic. It is seeded by pairing bodies of
the two configurations, and the random source is injected so that results
are reproducible. The minimum it returns is a best effort, never worse than
the distance of the unaligned pair, but it is not certified to be global.
*/
package mindist
