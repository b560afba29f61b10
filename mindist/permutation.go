package mindist

import (
	"fmt"

	"github.com/BurntSushi/rigidalign/assign"
	"github.com/BurntSushi/rigidalign/rigid"
)

// Permutation returns the relabeling of b that best matches a, in the form
// accepted by Transform.Permute: body perm[i] of b is paired with body i of
// a. Within every permutation group, the pairing minimizes the summed
// squared minimum image distance between centers. Groups with more than
// cutoff bodies are paired greedily instead of exactly.
//
// a and b must fit the topology of m.
func (m *Measure) Permutation(a, b rigid.Configuration, cutoff int) ([]int, error) {
	perm := make([]int, m.top.NumBodies())
	for _, group := range m.top.PermGroups() {
		if len(group) == 1 {
			perm[group[0]] = group[0]
			continue
		}
		cost := make([][]float64, len(group))
		for r, i := range group {
			cost[r] = make([]float64, len(group))
			for c, j := range group {
				d := m.box.MinImage(a.Center(i).Sub(b.Center(j)))
				cost[r][c] = d.Dot(d)
			}
		}

		var sub []int
		var err error
		if len(group) > cutoff {
			sub, err = assign.Greedy(cost)
		} else {
			sub, err = assign.Hungarian(cost)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		for r, c := range sub {
			perm[group[r]] = group[c]
		}
	}
	return perm, nil
}
