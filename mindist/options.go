package mindist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/BurntSushi/rigidalign/rmsd"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Options controls the searches of ExactMatch and MinPermDist. Use
// DefaultOptions or LoadOptions to get a valid value.
type Options struct {
	// Accuracy is the distance below which two configurations are the same.
	Accuracy float64 `yaml:"accuracy" validate:"gt=0"`

	// NumSeeds is the number of (anchor, partner) body pairs MinPermDist
	// builds starting rotations from.
	NumSeeds int `yaml:"num_seeds" validate:"gt=0"`

	// MaxIterations caps the refinement loop of a single seed.
	MaxIterations int `yaml:"max_iterations" validate:"gt=0"`

	// RotationTranslationWeight scales the orientation term of the metric
	// relative to the center term.
	RotationTranslationWeight float64 `yaml:"rotation_translation_weight" validate:"gte=0"`

	// ConvergenceThreshold stops refinement once a step improves the squared
	// distance by less than this.
	ConvergenceThreshold float64 `yaml:"convergence_threshold" validate:"gte=0"`

	// MaxAnchors caps the number of partner bodies ExactMatch tries for its
	// anchor body. Zero tries all of them.
	MaxAnchors int `yaml:"max_anchors" validate:"gte=0"`

	// MatchingCutoff is the largest permutation group solved exactly. Larger
	// groups are assigned greedily.
	MatchingCutoff int `yaml:"matching_cutoff" validate:"gt=0"`

	// Workers is the number of seeds refined concurrently. Zero means
	// GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`

	// Superposer names the best-fit rotation backend: "kabsch" or "qcp".
	Superposer string `yaml:"superposer" validate:"oneof=kabsch qcp"`

	// FixRotation disables the rotational search, for systems where global
	// rotation is not a symmetry. Only translations and permutations are
	// searched.
	FixRotation bool `yaml:"fix_rotation"`

	// Logger receives debug output from the searches. It may be nil.
	Logger *slog.Logger `yaml:"-" validate:"-"`
}

// DefaultOptions returns the options used when nothing else is specified.
func DefaultOptions() Options {
	return Options{
		Accuracy:                  0.01,
		NumSeeds:                  50,
		MaxIterations:             20,
		RotationTranslationWeight: 1,
		ConvergenceThreshold:      1e-8,
		MatchingCutoff:            200,
		Superposer:                "kabsch",
	}
}

// LoadOptions reads options in YAML from r. Fields missing from the input
// keep their default values, and unknown fields are an error. An empty input
// yields DefaultOptions.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("could not decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate returns an error wrapping ErrInvalidInput if any option is out of
// range.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return nil
}

func (o Options) superposer() rmsd.Superposer {
	if o.Superposer == "qcp" {
		return rmsd.QCP{}
	}
	return rmsd.Kabsch{}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
