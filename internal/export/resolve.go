package export

import (
	"path"

	"github.com/agentic-research/treeport/api"
	"github.com/agentic-research/treeport/internal/codec"
	"github.com/agentic-research/treeport/internal/scene"
)

// traversal tells the walker how to continue below a resolved node.
type traversal uint8

const (
	traverseNormal traversal = iota
	traverseScriptsOnly
	traverseSkip
)

// representation is the resolver's answer for one node: the instructions
// that materialize it, the base path its children are placed under, and
// how to keep traversing. A nil representation drops the node entirely.
type representation struct {
	instructions []Instruction
	path         string
	traversal    traversal
}

func scriptExtension(class string) string {
	switch class {
	case "Script":
		return ".server.luau"
	case "LocalScript":
		return ".client.luau"
	default:
		return ".luau"
	}
}

// resolveInstance decides how one node is represented on disk. It never
// touches the sink; soft data issues degrade to safe defaults with a log
// line. Only structural corruption returns an error.
func resolveInstance(tree *scene.Tree, base string, ref scene.Ref, node *scene.Node, scripts ScriptMap, cfg *Config) (*representation, error) {
	containsScripts := scripts[ref]

	switch {
	case node.Class == "Folder":
		return resolveFolder(base, node, containsScripts, cfg)
	case scene.IsScriptClass(node.Class):
		return resolveScript(base, node, scripts, cfg)
	default:
		return resolveGeneric(tree, base, ref, node, containsScripts, cfg)
	}
}

func resolveFolder(base string, node *scene.Node, containsScripts bool, cfg *Config) (*representation, error) {
	if cfg.Mode == ModeScriptsOnly && !containsScripts {
		return nil, nil
	}

	folder := SanitizedJoin(base, node.Name)
	meta, err := api.MetaFile{IgnoreUnknownInstances: true}.Encode()
	if err != nil {
		return nil, err
	}
	return &representation{
		instructions: []Instruction{
			CreateFolder{Path: folder},
			CreateFile{Path: path.Join(folder, MetaFilename), Contents: meta},
		},
		path:      folder,
		traversal: traverseNormal,
	}, nil
}

func resolveScript(base string, node *scene.Node, scripts ScriptMap, cfg *Config) (*representation, error) {
	extension := scriptExtension(node.Class)

	var source []byte
	switch value, ok := node.Properties["Source"]; {
	case !ok:
		cfg.Log.Warn("script has no Source, writing empty file",
			"name", node.Name, "class", node.Class)
	default:
		text, isString := value.AsString()
		if !isString {
			cfg.Log.Warn("script Source is not a string, writing empty file",
				"name", node.Name, "class", node.Class)
			break
		}
		source = []byte(text)
	}

	if len(node.Children) == 0 {
		return &representation{
			instructions: []Instruction{
				CreateFile{Path: SanitizedJoin(base, node.Name+extension), Contents: source},
			},
			path:      base,
			traversal: traverseSkip,
		}, nil
	}

	// A script with children becomes a directory so its descendants stay
	// nested under it.
	folder := SanitizedJoin(base, node.Name)
	instructions := []Instruction{
		CreateFolder{Path: folder},
		CreateFile{Path: path.Join(folder, "init"+extension), Contents: source},
	}

	scriptChildren := 0
	for _, childRef := range node.Children {
		if scripts[childRef] {
			scriptChildren++
		}
	}

	// When every child leads to a script, nothing unknown will live in the
	// directory and the sidecar is unnecessary.
	if scriptChildren != len(node.Children) {
		meta, err := api.MetaFile{IgnoreUnknownInstances: true}.Encode()
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, CreateFile{
			Path:     path.Join(folder, MetaFilename),
			Contents: meta,
		})
	}

	return &representation{
		instructions: instructions,
		path:         folder,
		traversal:    traverseNormal,
	}, nil
}

func resolveGeneric(tree *scene.Tree, base string, ref scene.Ref, node *scene.Node, containsScripts bool, cfg *Config) (*representation, error) {
	if cfg.isService(node.Class) {
		if cfg.Mode == ModeScriptsOnly && !containsScripts {
			return nil, nil
		}
		// The walker filters unrespected services before dispatch; this
		// guards direct resolver callers.
		if !cfg.isRespected(node.Class) {
			return nil, nil
		}

		newBase := SanitizedJoin(base, node.Name)
		var instructions []Instruction
		if !cfg.isNonTree(node.Class) {
			instructions = append(instructions, AddToTree{
				Name:      node.Name,
				Partition: api.Partition(node.Class, newBase),
			})
		}
		instructions = append(instructions, CreateFolder{Path: newBase})

		return &representation{
			instructions: instructions,
			path:         newBase,
			traversal:    traverseNormal,
		}, nil
	}

	if cfg.Mode == ModeScriptsOnly && !containsScripts {
		return nil, nil
	}

	folder := SanitizedJoin(base, node.Name)
	instructions := []Instruction{CreateFolder{Path: folder}}

	if !containsScripts {
		return &representation{
			instructions: instructions,
			path:         folder,
			traversal:    traverseSkip,
		}, nil
	}

	if cfg.Mode == ModeFull {
		// The subtree is encoded without its scripts; the scripts-only
		// traversal below emits those as real files next to the blob.
		blob, err := encodeWithoutScripts(tree, ref, node)
		if err != nil {
			cfg.Log.Warn("couldn't encode model for subtree, omitting file",
				"name", node.Name, "class", node.Class, "error", err)
		} else {
			instructions = append(instructions, CreateFile{
				Path:     path.Join(folder, "init"+codec.ModelExt),
				Contents: blob,
			})
		}
	}

	return &representation{
		instructions: instructions,
		path:         folder,
		traversal:    traverseScriptsOnly,
	}, nil
}

// encodeWithoutScripts clones the subtree at ref, excising every
// script-type node and its descendants, and encodes the clone.
func encodeWithoutScripts(tree *scene.Tree, ref scene.Ref, node *scene.Node) ([]byte, error) {
	clone := scene.NewTree(node.Class, node.Name)
	root := clone.Root()
	for key, value := range node.Properties {
		if err := clone.SetProperty(root, key, value); err != nil {
			return nil, err
		}
	}
	for _, childRef := range node.Children {
		if err := cloneWithoutScripts(tree, childRef, clone, root); err != nil {
			return nil, err
		}
	}
	return codec.Encode(clone, root)
}

func cloneWithoutScripts(src *scene.Tree, ref scene.Ref, dst *scene.Tree, parent scene.Ref) error {
	node, err := src.Node(ref)
	if err != nil {
		return err
	}
	if scene.IsScriptClass(node.Class) {
		return nil
	}

	newRef, err := dst.Add(parent, node.Class, node.Name)
	if err != nil {
		return err
	}
	for key, value := range node.Properties {
		if err := dst.SetProperty(newRef, key, value); err != nil {
			return err
		}
	}
	for _, childRef := range node.Children {
		if err := cloneWithoutScripts(src, childRef, dst, newRef); err != nil {
			return err
		}
	}
	return nil
}
