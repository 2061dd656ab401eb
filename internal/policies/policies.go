// Package policies implements the exploration policies: given the values of the candidate actions, they
// choose one of them, either the best (exploitation) or a random one (exploration).
package policies

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/fourGo/internal/generics"
	"github.com/janpfeifer/fourGo/internal/parameters"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"
)

const (
	// GreedyVariant is the name of the Greedy policy.
	GreedyVariant = "greedy"

	// EpsilonGreedyVariant is the name of the EpsilonGreedy policy.
	EpsilonGreedyVariant = "epsilon_greedy"

	// DefaultEpsilon is the exploration probability of EpsilonGreedy if none is given.
	DefaultEpsilon = 0.1
)

// Policy chooses among candidate actions, given their values.
type Policy interface {
	fmt.Stringer

	// Variant of the policy, used to tag it in saved files.
	Variant() string

	// Choose returns the index of the chosen value. It panics if values is empty.
	Choose(values []float64) int

	// MarshalBinary serializes the policy configuration. It can be restored with Decode.
	MarshalBinary() ([]byte, error)
}

// Greedy always chooses the largest value, with ties broken at random.
type Greedy struct{}

// EpsilonGreedy chooses a random value with probability Epsilon, and otherwise it behaves like Greedy.
type EpsilonGreedy struct {
	Epsilon float64 `yaml:"epsilon"`
}

var (
	_ Policy = Greedy{}
	_ Policy = (*EpsilonGreedy)(nil)
)

// String implements fmt.Stringer.
func (Greedy) String() string { return "Greedy" }

// Variant implements Policy.
func (Greedy) Variant() string { return GreedyVariant }

// Choose implements Policy.
func (Greedy) Choose(values []float64) int {
	if len(values) == 0 {
		exceptions.Panicf("policies.Greedy.Choose: no values to choose from")
	}
	best := generics.ArgMaxes(values)
	return best[frand.Intn(len(best))]
}

// MarshalBinary implements Policy.
func (Greedy) MarshalBinary() ([]byte, error) { return []byte{}, nil }

// NewEpsilonGreedy creates an EpsilonGreedy policy. epsilon must be in [0, 1].
func NewEpsilonGreedy(epsilon float64) (*EpsilonGreedy, error) {
	if epsilon < 0 || epsilon > 1 || epsilon != epsilon {
		return nil, errors.Errorf("epsilon_greedy policy requires epsilon in [0, 1], got %g", epsilon)
	}
	return &EpsilonGreedy{Epsilon: epsilon}, nil
}

// String implements fmt.Stringer.
func (p *EpsilonGreedy) String() string { return fmt.Sprintf("EpsilonGreedy(ε=%g)", p.Epsilon) }

// Variant implements Policy.
func (p *EpsilonGreedy) Variant() string { return EpsilonGreedyVariant }

// Choose implements Policy.
func (p *EpsilonGreedy) Choose(values []float64) int {
	if len(values) == 0 {
		exceptions.Panicf("policies.EpsilonGreedy.Choose: no values to choose from")
	}
	if p.Epsilon > 0 && frand.Float64() < p.Epsilon {
		return frand.Intn(len(values))
	}
	return Greedy{}.Choose(values)
}

// MarshalBinary implements Policy.
func (p *EpsilonGreedy) MarshalBinary() ([]byte, error) {
	return yaml.Marshal(p)
}

// New creates a policy from a configuration string: the variant name optionally followed by
// comma-separated parameters, e.g. "epsilon_greedy,epsilon=0.2".
func New(config string) (Policy, error) {
	params := parameters.NewFromConfigString(config)
	variant := parameters.PopKind(params, config)
	var policy Policy
	switch variant {
	case GreedyVariant:
		policy = Greedy{}
	case EpsilonGreedyVariant:
		epsilon, err := parameters.PopParamOr(params, "epsilon", DefaultEpsilon)
		if err != nil {
			return nil, err
		}
		policy, err = NewEpsilonGreedy(epsilon)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unknown policy %q, valid values are %q or %q",
			variant, GreedyVariant, EpsilonGreedyVariant)
	}
	if err := parameters.CheckAllUsed(params, fmt.Sprintf("policy %q", variant)); err != nil {
		return nil, err
	}
	return policy, nil
}

// Decode restores a policy of the given variant from the payload created by Policy.MarshalBinary.
func Decode(variant string, payload []byte) (Policy, error) {
	switch variant {
	case GreedyVariant:
		return Greedy{}, nil
	case EpsilonGreedyVariant:
		p := &EpsilonGreedy{}
		if err := yaml.Unmarshal(payload, p); err != nil {
			return nil, errors.Wrap(err, "failed to parse epsilon_greedy policy")
		}
		return NewEpsilonGreedy(p.Epsilon)
	}
	return nil, errors.Errorf("unknown policy %q", variant)
}
