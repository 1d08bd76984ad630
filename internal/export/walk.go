package export

import (
	"fmt"

	"github.com/agentic-research/treeport/api"
	"github.com/agentic-research/treeport/internal/scene"
)

// PlayerScriptsRoot is the node the sync tool assigns special meaning to:
// it always becomes a directory plus an explicit manifest partition built
// from its direct children, never an opaque service folder.
const PlayerScriptsRoot = "StarterPlayer"

// Run exports the whole tree into the sink: one containment pass, then one
// instruction-emitting traversal, then exactly one sink finalization.
func Run(tree *scene.Tree, sink Sink, cfg Config) error {
	if cfg.Log == nil {
		cfg.Log = DefaultConfig().Log
	}
	if cfg.Classes == nil {
		cfg.Log.Warn("class database unavailable, treating every class as a non-service")
	}

	scripts, err := AnalyzeScripts(tree)
	if err != nil {
		return err
	}

	w := &walker{tree: tree, sink: sink, scripts: scripts, cfg: &cfg}
	if err := w.visit(tree.Root(), "", false); err != nil {
		return err
	}

	if err := sink.Finish(); err != nil {
		return fmt.Errorf("finalize sink: %w", err)
	}
	return nil
}

// walker owns the traversal state and every side-effecting sink call.
type walker struct {
	tree    *scene.Tree
	sink    Sink
	scripts ScriptMap
	cfg     *Config
}

// visit emits instructions for every child of ref. scriptsOnly is the
// sticky flag forced on below subtrees that were encoded as model blobs.
func (w *walker) visit(ref scene.Ref, base string, scriptsOnly bool) error {
	node, err := w.tree.Node(ref)
	if err != nil {
		return fmt.Errorf("walk %q: %w", base, err)
	}

	for _, childRef := range node.Children {
		child, err := w.tree.Node(childRef)
		if err != nil {
			return fmt.Errorf("walk %q: child of %s: %w", base, node.Name, err)
		}

		if w.cfg.Mode == ModeScriptsOnly && !w.scripts[childRef] {
			continue
		}

		// Inside a scripts-only subtree, non-script nodes are never
		// materialized themselves; we only descend through the ones that
		// still lead to scripts.
		if scriptsOnly && !scene.IsScriptClass(child.Class) {
			if w.scripts[childRef] {
				next := SanitizedJoin(base, child.Name)
				if err := w.visit(childRef, next, true); err != nil {
					return err
				}
			}
			continue
		}

		if w.cfg.isService(child.Class) && !w.cfg.isRespected(child.Class) {
			continue
		}

		var rep *representation
		if child.Class == PlayerScriptsRoot {
			rep, err = w.playerScriptsRoot(base, child)
		} else {
			rep, err = resolveInstance(w.tree, base, childRef, child, w.scripts, w.cfg)
		}
		if err != nil {
			return err
		}
		if rep == nil {
			continue
		}

		if err := w.sink.ApplyBatch(rep.instructions); err != nil {
			return fmt.Errorf("apply instructions for %s: %w", child.Name, err)
		}

		switch rep.traversal {
		case traverseNormal:
			err = w.visit(childRef, rep.path, scriptsOnly)
		case traverseScriptsOnly:
			err = w.visit(childRef, rep.path, true)
		case traverseSkip:
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// playerScriptsRoot builds the special-case representation: a folder plus
// a manifest partition whose children mirror the node's direct children.
func (w *walker) playerScriptsRoot(base string, node *scene.Node) (*representation, error) {
	folder := SanitizedJoin(base, node.Name)

	children := make(map[string]api.TreePartition, len(node.Children))
	for _, childRef := range node.Children {
		child, err := w.tree.Node(childRef)
		if err != nil {
			return nil, fmt.Errorf("player-scripts child: %w", err)
		}
		children[child.Name] = api.Partition(child.Class, SanitizedJoin(folder, child.Name))
	}

	return &representation{
		instructions: []Instruction{
			CreateFolder{Path: folder},
			AddToTree{
				Name: node.Name,
				Partition: api.TreePartition{
					ClassName:              node.Class,
					Children:               children,
					IgnoreUnknownInstances: true,
				},
			},
		},
		path:      folder,
		traversal: traverseNormal,
	}, nil
}
