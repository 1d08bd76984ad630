// Package codec encodes instance subtrees to model documents and decodes
// them back. The export core treats it as an opaque byte codec; the
// concrete format is a sorted-key JSON document.
package codec

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/treeport/internal/scene"
)

// ModelExt is the file extension convention for encoded subtrees.
const ModelExt = ".model.json"

var writeOptions = ojg.Options{Sort: true, Indent: 2}

// Encode serializes the subtree rooted at ref into a model document.
func Encode(tree *scene.Tree, ref scene.Ref) ([]byte, error) {
	doc, err := decompose(tree, ref)
	if err != nil {
		return nil, err
	}
	out, err := oj.Marshal(doc, &writeOptions)
	if err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}
	return out, nil
}

// Decode parses a model document into a fresh tree.
func Decode(data []byte) (*scene.Tree, error) {
	raw, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("model root is %T, want object", raw)
	}

	class, name, err := identity(obj)
	if err != nil {
		return nil, err
	}
	tree := scene.NewTree(class, name)
	if err := fill(tree, tree.Root(), obj); err != nil {
		return nil, err
	}
	return tree, nil
}

func decompose(tree *scene.Tree, ref scene.Ref) (map[string]any, error) {
	node, err := tree.Node(ref)
	if err != nil {
		return nil, err
	}

	doc := map[string]any{
		"className": node.Class,
		"name":      node.Name,
	}
	if len(node.Properties) > 0 {
		props := make(map[string]any, len(node.Properties))
		for key, value := range node.Properties {
			props[key] = value.Any()
		}
		doc["properties"] = props
	}
	if len(node.Children) > 0 {
		children := make([]any, 0, len(node.Children))
		for _, childRef := range node.Children {
			child, err := decompose(tree, childRef)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		doc["children"] = children
	}
	return doc, nil
}

func identity(obj map[string]any) (class, name string, err error) {
	class, ok := obj["className"].(string)
	if !ok {
		return "", "", fmt.Errorf("instance missing className")
	}
	name, ok = obj["name"].(string)
	if !ok {
		return "", "", fmt.Errorf("instance %q missing name", class)
	}
	return class, name, nil
}

// fill populates properties and children of an already-created node.
func fill(tree *scene.Tree, ref scene.Ref, obj map[string]any) error {
	if rawProps, ok := obj["properties"]; ok {
		props, ok := rawProps.(map[string]any)
		if !ok {
			return fmt.Errorf("properties of %v are %T, want object", obj["name"], rawProps)
		}
		for key, raw := range props {
			value, err := toValue(raw)
			if err != nil {
				return fmt.Errorf("property %q of %v: %w", key, obj["name"], err)
			}
			if err := tree.SetProperty(ref, key, value); err != nil {
				return err
			}
		}
	}

	rawChildren, ok := obj["children"]
	if !ok {
		return nil
	}
	children, ok := rawChildren.([]any)
	if !ok {
		return fmt.Errorf("children of %v are %T, want array", obj["name"], rawChildren)
	}
	for i, rawChild := range children {
		childObj, ok := rawChild.(map[string]any)
		if !ok {
			return fmt.Errorf("child %d of %v is %T, want object", i, obj["name"], rawChild)
		}
		class, name, err := identity(childObj)
		if err != nil {
			return err
		}
		childRef, err := tree.Add(ref, class, name)
		if err != nil {
			return err
		}
		if err := fill(tree, childRef, childObj); err != nil {
			return err
		}
	}
	return nil
}

func toValue(raw any) (scene.Value, error) {
	switch v := raw.(type) {
	case string:
		return scene.String(v), nil
	case bool:
		return scene.Bool(v), nil
	case int64:
		return scene.Number(float64(v)), nil
	case float64:
		return scene.Number(v), nil
	default:
		return scene.Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
