/*
rb-mindist compares configurations of rigid bodies in a periodic box. A
reference configuration is compared against one or more candidates, and for
each candidate either the minimum distance (the default) or an exact match
verdict (with -match) is printed.

The distance is minimized over global rotations, translations, periodic
images and permutations of identical bodies. When fix_rotation is set in the
options file, rotations are not searched.

Usage:

	rb-mindist [flags] topology reference candidate ...

The topology is a YAML file listing the site geometry of each kind of rigid
body and how many bodies of each kind there are:

	fragments:
	  water:
	    sites: [[0, -0.5, 0], [0.6, 0.25, 0], [-0.6, 0.25, 0]]
	bodies:
	  - fragment: water
	    count: 30

A configuration file holds 6N whitespace separated numbers: the 3N
coordinates of the body centers followed by the 3N components of the body
rotation vectors. Everything after a '#' is ignored.

If a candidate is '-', candidate file names are read from stdin, one per
line.

# Output

One line is printed per candidate, in the order given:

	candidate-file	distance

or, with -match:

	candidate-file	true|false

When -aligned is set to a directory, the aligned copy of every candidate is
written there under the candidate's base name.

# Details

Search options are read from the YAML file given with -options. Every field
is optional:

	accuracy: 0.01
	num_seeds: 50
	max_iterations: 20
	rotation_translation_weight: 1
	convergence_threshold: 1e-8
	max_anchors: 0
	matching_cutoff: 200
	workers: 0
	superposer: kabsch
	fix_rotation: false
*/
package main
