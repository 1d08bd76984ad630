package sink

import (
	"fmt"

	"github.com/agentic-research/treeport/api"
	"github.com/agentic-research/treeport/internal/export"
)

// Recorder keeps the raw ordered instruction stream of a run while still
// honoring manifest semantics. Used by tests and dry runs to assert on
// exactly what the walker emitted.
type Recorder struct {
	Instructions []export.Instruction
	Manifest     *api.Manifest
	Finished     bool
}

// NewRecorder returns an empty recorder.
func NewRecorder(projectName string) *Recorder {
	return &Recorder{Manifest: api.NewManifest(projectName)}
}

func (r *Recorder) Apply(ins export.Instruction) error {
	r.Instructions = append(r.Instructions, ins)
	if add, ok := ins.(export.AddToTree); ok {
		r.Manifest.Add(add.Name, add.Partition)
	}
	return nil
}

func (r *Recorder) ApplyBatch(ins []export.Instruction) error {
	for _, i := range ins {
		if err := r.Apply(i); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Finish() error {
	if r.Finished {
		return fmt.Errorf("recorder already finished")
	}
	r.Finished = true
	return nil
}

var _ export.Sink = (*Recorder)(nil)
