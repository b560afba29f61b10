package rigid

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrTopology is wrapped by every error that reports an inconsistent
// topology, or a configuration that does not fit its topology.
var ErrTopology = errors.New("rigid: invalid topology")

// Topology describes the bodies of a system: the fragment geometry of each
// body and the permutation groups of mutually interchangeable bodies.
//
// A Topology is read-only once built, and may be shared between goroutines.
type Topology struct {
	fragments []*Fragment
	groups    [][]int
	groupOf   []int
}

// NewTopology builds a topology with one body per fragment. Bodies are
// partitioned into permutation groups by fragment geometry; groups are
// ordered by their first body.
func NewTopology(fragments []*Fragment) *Topology {
	t := &Topology{
		fragments: append([]*Fragment(nil), fragments...),
		groupOf:   make([]int, len(fragments)),
	}
	for i, f := range t.fragments {
		t.groupOf[i] = -1
		for g, group := range t.groups {
			if t.fragments[group[0]].SameGeometry(f) {
				t.groups[g] = append(t.groups[g], i)
				t.groupOf[i] = g
				break
			}
		}
		if t.groupOf[i] < 0 {
			t.groupOf[i] = len(t.groups)
			t.groups = append(t.groups, []int{i})
		}
	}
	return t
}

// SetPermGroups replaces the permutation groups. Every group must hold
// distinct, valid bodies with identical geometry, and no body may be in two
// groups. Bodies not listed are fixed: they are placed in groups of their
// own.
func (t *Topology) SetPermGroups(groups [][]int) error {
	groupOf := make([]int, len(t.fragments))
	for i := range groupOf {
		groupOf[i] = -1
	}
	var newGroups [][]int
	for g, group := range groups {
		if len(group) == 0 {
			return fmt.Errorf("%w: permutation group %d is empty", ErrTopology, g)
		}
		for _, i := range group {
			if i < 0 || i >= len(t.fragments) {
				return fmt.Errorf("%w: permutation group %d refers to "+
					"body %d, but there are only %d bodies",
					ErrTopology, g, i, len(t.fragments))
			}
			if groupOf[i] >= 0 {
				return fmt.Errorf("%w: body %d is in more than one "+
					"permutation group", ErrTopology, i)
			}
			if !t.fragments[group[0]].SameGeometry(t.fragments[i]) {
				return fmt.Errorf("%w: bodies %d and %d are in permutation "+
					"group %d but have different geometry",
					ErrTopology, group[0], i, g)
			}
			groupOf[i] = len(newGroups)
		}
		newGroups = append(newGroups, append([]int(nil), group...))
	}
	for i := range groupOf {
		if groupOf[i] < 0 {
			groupOf[i] = len(newGroups)
			newGroups = append(newGroups, []int{i})
		}
	}
	t.groups, t.groupOf = newGroups, groupOf
	return nil
}

// NumBodies returns the number of rigid bodies.
func (t *Topology) NumBodies() int {
	return len(t.fragments)
}

// Fragment returns the geometry of body i.
func (t *Topology) Fragment(i int) *Fragment {
	return t.fragments[i]
}

// PermGroups returns the permutation groups. The slices must not be
// modified.
func (t *Topology) PermGroups() [][]int {
	return t.groups
}

// Group returns the index of the permutation group containing body i.
func (t *Topology) Group(i int) int {
	return t.groupOf[i]
}

// Check returns an error if x does not hold exactly 6 coordinates for every
// body of t.
func (t *Topology) Check(x Configuration) error {
	if len(x) != 6*len(t.fragments) {
		return fmt.Errorf("%w: configuration has %d coordinates, but a "+
			"topology of %d bodies needs %d",
			ErrTopology, len(x), len(t.fragments), 6*len(t.fragments))
	}
	return nil
}

// Sites returns the world-frame positions of the sites of body i.
func (t *Topology) Sites(x Configuration, i int) []mgl64.Vec3 {
	c := x.Center(i)
	sites := t.fragments[i].Oriented(x.Rotation(i))
	for k := range sites {
		sites[k] = sites[k].Add(c)
	}
	return sites
}

// ToAtomistic expands x into the world-frame positions of every site, body
// by body. It panics if x does not fit the topology; mismatched dimensions
// are a programming error here.
func (t *Topology) ToAtomistic(x Configuration) []mgl64.Vec3 {
	if err := t.Check(x); err != nil {
		panic(err.Error())
	}
	var atoms []mgl64.Vec3
	for i := range t.fragments {
		atoms = append(atoms, t.Sites(x, i)...)
	}
	return atoms
}
