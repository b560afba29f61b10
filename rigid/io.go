package rigid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// topologyFile is the YAML layout of a topology:
//
//	fragments:
//	  water:
//	    sites: [[0, -0.5, 0], [0.6, 0.25, 0], [-0.6, 0.25, 0]]
//	    symmetries: [[-1, 0, 0, 0, 1, 0, 0, 0, -1]]
//	bodies:
//	  - fragment: water
//	    count: 30
//	groups: [[0, 1, 2]]
//
// Symmetries are row-major 3x3 matrices. Groups are optional; without them,
// bodies are grouped by geometry.
type topologyFile struct {
	Fragments map[string]fragmentFile `yaml:"fragments"`
	Bodies    []bodiesFile            `yaml:"bodies"`
	Groups    [][]int                 `yaml:"groups"`
}

type fragmentFile struct {
	Sites      [][3]float64 `yaml:"sites"`
	Symmetries [][9]float64 `yaml:"symmetries"`
}

type bodiesFile struct {
	Fragment string `yaml:"fragment"`
	Count    int    `yaml:"count"`
}

// ReadTopology reads a topology in the YAML format described above.
// Bodies sharing a fragment name share a single *Fragment value.
func ReadTopology(r io.Reader) (*Topology, error) {
	var tf topologyFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("could not decode topology: %w", err)
	}

	frags := make(map[string]*Fragment, len(tf.Fragments))
	for name, ff := range tf.Fragments {
		sites := make([]mgl64.Vec3, len(ff.Sites))
		for k, s := range ff.Sites {
			sites[k] = mgl64.Vec3(s)
		}
		syms := make([]mgl64.Mat3, len(ff.Symmetries))
		for k, m := range ff.Symmetries {
			syms[k] = mgl64.Mat3{
				m[0], m[3], m[6],
				m[1], m[4], m[7],
				m[2], m[5], m[8],
			}
		}
		f, err := NewFragment(sites, syms...)
		if err != nil {
			return nil, fmt.Errorf("fragment '%s': %w", name, err)
		}
		frags[name] = f
	}

	var bodies []*Fragment
	for _, b := range tf.Bodies {
		f, ok := frags[b.Fragment]
		if !ok {
			return nil, fmt.Errorf("%w: unknown fragment '%s'",
				ErrTopology, b.Fragment)
		}
		if b.Count <= 0 {
			return nil, fmt.Errorf("%w: fragment '%s' has non-positive "+
				"count %d", ErrTopology, b.Fragment, b.Count)
		}
		for i := 0; i < b.Count; i++ {
			bodies = append(bodies, f)
		}
	}
	if len(bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies", ErrTopology)
	}

	t := NewTopology(bodies)
	if tf.Groups != nil {
		if err := t.SetPermGroups(tf.Groups); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadConfiguration reads whitespace separated coordinates: the 3N centers
// followed by the 3N rotation vectors. Everything after a '#' on a line is
// ignored.
func ReadConfiguration(r io.Reader) (Configuration, error) {
	var x Configuration
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: could not parse '%s' as "+
					"a coordinate: %w", lineno, field, err)
			}
			x = append(x, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(x) == 0 || len(x)%6 != 0 {
		return nil, fmt.Errorf("%w: read %d coordinates, which is not a "+
			"positive multiple of 6", ErrTopology, len(x))
	}
	return x, nil
}

// WriteConfiguration writes x in the format read by ReadConfiguration, one
// 3-vector per line: all centers, then all rotation vectors.
func WriteConfiguration(w io.Writer, x Configuration) error {
	buf := bufio.NewWriter(w)
	for i := 0; i < len(x); i += 3 {
		if _, err := fmt.Fprintf(buf, "%.12f %.12f %.12f\n",
			x[i], x[i+1], x[i+2]); err != nil {
			return err
		}
	}
	return buf.Flush()
}
