// Package sink provides the instruction sinks an export run writes into:
// a billy-backed project writer (real filesystem or in-memory) and a
// recorder for inspecting raw instruction streams.
package sink

import (
	"fmt"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/treeport/api"
	"github.com/agentic-research/treeport/internal/export"
)

// Writer materializes instructions onto a billy.Filesystem rooted at the
// project directory. Files and folders land under api.SourceDir; the
// manifest is written to the root on Finish. Backed by osfs it is the
// real disk writer, backed by memfs it is the in-memory verification
// filesystem.
type Writer struct {
	fs       billy.Filesystem
	manifest *api.Manifest
	written  map[string]struct{}
	finished bool

	stats Stats
}

// Stats counts what a run produced.
type Stats struct {
	Files      int
	Folders    int
	Partitions int
}

// NewWriter prepares the project root for a run.
func NewWriter(fs billy.Filesystem, projectName string) (*Writer, error) {
	if err := fs.MkdirAll(api.SourceDir, 0o755); err != nil {
		return nil, fmt.Errorf("create source dir: %w", err)
	}
	return &Writer{
		fs:       fs,
		manifest: api.NewManifest(projectName),
		written:  make(map[string]struct{}),
	}, nil
}

// Stats reports what has been applied so far.
func (w *Writer) Stats() Stats {
	return w.stats
}

// Manifest exposes the manifest being built, mainly for verification.
func (w *Writer) Manifest() *api.Manifest {
	return w.manifest
}

func (w *Writer) Apply(ins export.Instruction) error {
	switch v := ins.(type) {
	case export.CreateFile:
		target := path.Join(api.SourceDir, v.Path)
		if _, dup := w.written[target]; dup {
			return fmt.Errorf("file %s emitted twice", target)
		}
		if err := w.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create parents for %s: %w", target, err)
		}
		if err := util.WriteFile(w.fs, target, v.Contents, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		w.written[target] = struct{}{}
		w.stats.Files++

	case export.CreateFolder:
		target := path.Join(api.SourceDir, v.Path)
		if err := w.fs.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create folder %s: %w", target, err)
		}
		w.stats.Folders++

	case export.AddToTree:
		w.manifest.Add(v.Name, v.Partition)
		w.stats.Partitions++

	default:
		return fmt.Errorf("unknown instruction %T", ins)
	}
	return nil
}

func (w *Writer) ApplyBatch(ins []export.Instruction) error {
	for _, i := range ins {
		if err := w.Apply(i); err != nil {
			return err
		}
	}
	return nil
}

// Finish writes the project manifest. It must be called exactly once.
func (w *Writer) Finish() error {
	if w.finished {
		return fmt.Errorf("writer already finished")
	}
	w.finished = true

	data, err := w.manifest.Encode()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := util.WriteFile(w.fs, api.ManifestFilename, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

var _ export.Sink = (*Writer)(nil)
