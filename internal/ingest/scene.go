// Package ingest loads scene documents from disk into instance trees.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/treeport/internal/codec"
	"github.com/agentic-research/treeport/internal/scene"
)

// LoadScene reads and decodes a scene document (.json / .scene.json /
// .model.json all share the model document format).
func LoadScene(path string) (*scene.Tree, error) {
	if filepath.Ext(path) != ".json" {
		return nil, fmt.Errorf("unsupported scene file %q (want .json)", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	tree, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", path, err)
	}
	return tree, nil
}
