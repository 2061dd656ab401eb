package gomlx

import (
	"bytes"
	"encoding/gob"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os"
	"path/filepath"
	"strings"
)

// payload is the serialized form of the model: its dimensions and the contents of the checkpoint files
// (hyperparameters in JSON and variables in binary), by file name.
type payload struct {
	Width, Height int
	Files         map[string][]byte
}

// MarshalBinary implements ai.Evaluator.
//
// The checkpoint is saved to a temporary directory, which is removed after it is read back.
func (s *Scorer) MarshalBinary() ([]byte, error) {
	dir, err := os.MkdirTemp("", "fourgo_cnn_")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temporary directory for CNN checkpoint")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			klog.Warningf("Failed to remove temporary checkpoint directory %q: %v", dir, err)
		}
	}()

	s.muLearning.RLock()
	defer s.muLearning.RUnlock()
	handler, err := checkpoints.Build(s.model.Context()).Dir(dir).Keep(1).Done()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create CNN checkpoint in %q", dir)
	}
	if err = handler.Save(); err != nil {
		return nil, errors.WithMessagef(err, "failed to save CNN checkpoint in %q", dir)
	}

	p := payload{Width: s.model.width, Height: s.model.height, Files: make(map[string][]byte)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list checkpoint directory %q", dir)
	}
	var hasJSON, hasBinary bool
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		hasJSON = hasJSON || strings.HasSuffix(name, ".json")
		hasBinary = hasBinary || strings.HasSuffix(name, ".bin")
		p.Files[name], err = os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read checkpoint file %q", name)
		}
	}
	if !hasJSON || !hasBinary {
		return nil, errors.Errorf("CNN checkpoint in %q is missing the hyperparameters or the variables", dir)
	}

	var buf bytes.Buffer
	if err = gob.NewEncoder(&buf).Encode(&p); err != nil {
		return nil, errors.Wrap(err, "failed to encode CNN checkpoint")
	}
	return buf.Bytes(), nil
}

// Decode restores a CNN evaluator, saved with MarshalBinary, for boards of the given dimensions.
//
// The checkpoint files are written to a temporary directory, removed once they are loaded (or failed to).
func Decode(width, height int, data []byte) (*Scorer, error) {
	var p payload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "failed to decode CNN checkpoint")
	}
	if p.Width != width || p.Height != height {
		return nil, errors.Errorf("CNN was saved for a %dx%d board, but the game uses a %dx%d board",
			p.Width, p.Height, width, height)
	}

	dir, err := os.MkdirTemp("", "fourgo_cnn_")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temporary directory for CNN checkpoint")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			klog.Warningf("Failed to remove temporary checkpoint directory %q: %v", dir, err)
		}
	}()
	var hasJSON bool
	for name := range p.Files {
		hasJSON = hasJSON || strings.HasSuffix(name, ".json")
	}
	if !hasJSON {
		return nil, errors.New("CNN checkpoint has no hyperparameters file")
	}
	for name, contents := range p.Files {
		if filepath.Base(name) != name {
			return nil, errors.Errorf("invalid CNN checkpoint file name %q", name)
		}
		if err = os.WriteFile(filepath.Join(dir, name), contents, 0o600); err != nil {
			return nil, errors.Wrapf(err, "failed to write checkpoint file %q", name)
		}
	}

	model := NewCNN(width, height)
	if err = loadCheckpoint(model, dir); err != nil {
		return nil, errors.WithMessage(err, "failed to load CNN checkpoint")
	}
	return newScorer(model), nil
}

// loadCheckpoint loads the variables and hyperparameters saved in dir into the model context.
// Errors raised as panics by the backend are returned as errors.
func loadCheckpoint(model *CNN, dir string) error {
	return exceptions.TryCatch[error](func() {
		_, err := checkpoints.Build(model.Context()).Dir(dir).Immediate().Done()
		if err != nil {
			panic(err)
		}
	})
}
