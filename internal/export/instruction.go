// Package export is the decision engine of the exporter: it walks an
// instance tree and turns every node into filesystem instructions for an
// instruction sink. The walker owns all side effects; representation
// resolution stays pure.
package export

import "github.com/agentic-research/treeport/api"

// MetaFilename is the per-directory sidecar filename.
const MetaFilename = "init.meta.json"

// Instruction is one materialization step. The sink must apply
// instructions in the order received.
type Instruction interface {
	isInstruction()
}

// CreateFile writes a file at a path relative to the output source root.
type CreateFile struct {
	Path     string
	Contents []byte
}

// CreateFolder creates a directory (and any missing parents).
type CreateFolder struct {
	Path string
}

// AddToTree registers a top-level partition in the project manifest.
type AddToTree struct {
	Name      string
	Partition api.TreePartition
}

func (CreateFile) isInstruction()   {}
func (CreateFolder) isInstruction() {}
func (AddToTree) isInstruction()    {}

// Sink consumes the instruction stream of one run. A run owns its sink
// exclusively; Finish is called exactly once, after the last instruction.
type Sink interface {
	Apply(ins Instruction) error
	// ApplyBatch applies instructions preserving order.
	ApplyBatch(ins []Instruction) error
	// Finish finalizes the run, writing the project manifest.
	Finish() error
}
