package export

import (
	"fmt"

	"github.com/agentic-research/treeport/internal/scene"
)

// ScriptMap records, per node, whether its subtree contains a script-type
// node (including the node itself). It is computed once, before any
// instruction is emitted, and read-only afterwards.
type ScriptMap map[scene.Ref]bool

// AnalyzeScripts runs a post-order pass over the whole tree and returns a
// fully populated ScriptMap.
func AnalyzeScripts(tree *scene.Tree) (ScriptMap, error) {
	scripts := make(ScriptMap, tree.Len())
	if _, err := analyzeScripts(tree, tree.Root(), scripts); err != nil {
		return nil, err
	}
	return scripts, nil
}

func analyzeScripts(tree *scene.Tree, ref scene.Ref, scripts ScriptMap) (bool, error) {
	node, err := tree.Node(ref)
	if err != nil {
		return false, fmt.Errorf("containment analysis: %w", err)
	}

	result := scene.IsScriptClass(node.Class)
	for _, childRef := range node.Children {
		childResult, err := analyzeScripts(tree, childRef, scripts)
		if err != nil {
			return false, err
		}
		result = result || childResult
	}

	scripts[ref] = result
	return result, nil
}
