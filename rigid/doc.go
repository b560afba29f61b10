/*
Package rigid describes systems of rigid bodies: the flat coordinate vector of
a configuration, the site geometry of each kind of body, and the permutation
groups of interchangeable bodies.

A configuration of N bodies has 6N coordinates. The first 3N are the body
centers, the last 3N are rotation vectors (angle-axis). The world-frame
position of site k of body i is

	c_i + R(p_i) s_k

where R is the Rodrigues rotation matrix of the rotation vector p_i and s_k
is the site's offset in the body frame. ToAtomistic performs this expansion
for every body.
*/
package rigid
