package learner

import (
	"encoding/base64"
	"github.com/cespare/xxhash"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
	"os"
)

// Record is the saved form of a Learner (the "agent file"), stored as YAML.
type Record struct {
	// ID identifies the lineage of the agent: it is created once and kept by all the trainings.
	ID string `yaml:"id"`

	// Game is either state.Drop4Name or state.Push4Name.
	Game string `yaml:"game"`

	Evaluator EvaluatorRecord `yaml:"evaluator"`
	Policy    PolicyRecord    `yaml:"policy"`

	StepSize   float64 `yaml:"step_size"`
	Discount   float64 `yaml:"discount"`
	Depth      int     `yaml:"depth"`
	BatchDepth int     `yaml:"batch_depth"`
	Lambda     float64 `yaml:"lambda"`

	// Scores of the games played against other agents: 1 for a win, 0 for a draw and -1 for a loss.
	Scores []float64 `yaml:"scores"`
}

// EvaluatorRecord holds the variant and the serialized parameters of an evaluator.
type EvaluatorRecord struct {
	Variant  string `yaml:"variant"`
	Payload  Blob   `yaml:"payload"`
	Checksum uint64 `yaml:"checksum"`
}

// PolicyRecord holds the variant and the serialized configuration of a policy.
type PolicyRecord struct {
	Variant string `yaml:"variant"`
	Payload Blob   `yaml:"payload"`
}

// Blob is binary content, stored in YAML as a base64 encoded !!binary scalar.
type Blob []byte

// MarshalYAML implements yaml.Marshaler.
func (b Blob) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!binary",
		Value: base64.StdEncoding.EncodeToString(b),
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Blob) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: expected a !!binary scalar", node.Line)
	}
	decoded, err := base64.StdEncoding.DecodeString(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid !!binary content", node.Line)
	}
	*b = decoded
	return nil
}

// Checksum of an evaluator payload.
func Checksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

func backupName(filename string) string {
	return filename + "~"
}

func temporaryName(filename string) string {
	return filename + ".tmp"
}

// Save the record to path. If the file already exists, it is renamed by appending a "~" suffix.
func (r *Record) Save(path string) error {
	contents, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "failed to encode agent %s", r.ID)
	}
	if err = os.WriteFile(temporaryName(path), contents, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write temporary agent file %q", temporaryName(path))
	}
	if _, err = os.Stat(path); err == nil {
		if err = os.Rename(path, backupName(path)); err != nil {
			klog.Warningf("Failed to rename %q to %q: %v", path, backupName(path), err)
		}
	}
	if err = os.Rename(temporaryName(path), path); err != nil {
		return errors.Wrapf(err, "failed to rename %q to %q", temporaryName(path), path)
	}
	return nil
}

// LoadRecord reads the record saved in path, and checks its consistency: the game must be known and the
// evaluator payload must match its checksum.
//
// If variant is not empty, the evaluator must be of the given variant.
func LoadRecord(path, variant string) (*Record, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read agent file %q", path)
	}
	r := &Record{}
	if err = yaml.Unmarshal(contents, r); err != nil {
		return nil, errors.Wrapf(err, "failed to parse agent file %q", path)
	}
	if err = ai.CheckGame(r.Game); err != nil {
		return nil, errors.WithMessagef(err, "agent file %q", path)
	}
	if checksum := Checksum(r.Evaluator.Payload); checksum != r.Evaluator.Checksum {
		return nil, errors.Errorf("agent file %q is corrupted: evaluator checksum is %x, expected %x",
			path, checksum, r.Evaluator.Checksum)
	}
	if variant != "" && r.Evaluator.Variant != variant {
		return nil, errors.Errorf("agent file %q has an evaluator %q, but %q was expected",
			path, r.Evaluator.Variant, variant)
	}
	return r, nil
}
