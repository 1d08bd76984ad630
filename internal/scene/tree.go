// Package scene holds the in-memory instance tree an export run reads from.
// Nodes live in an arena owned by the Tree; the rest of the system refers to
// them through Ref handles and never mutates a tree it did not build.
package scene

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("instance not found")

// Ref is an opaque handle to a node within one Tree. Refs from different
// trees must not be mixed.
type Ref int32

// NilRef is the zero-value handle; it never resolves.
const NilRef Ref = -1

// Node is a single instance: a class tag, a display name, typed properties
// and an ordered list of children.
type Node struct {
	Class      string
	Name       string
	Properties map[string]Value
	Children   []Ref
}

// Tree is an arena of nodes with a single root.
type Tree struct {
	nodes []Node
	root  Ref
}

// NewTree creates a tree containing only the root instance.
func NewTree(class, name string) *Tree {
	t := &Tree{root: 0}
	t.nodes = append(t.nodes, Node{Class: class, Name: name})
	return t
}

// Root returns the handle of the root instance.
func (t *Tree) Root() Ref {
	return t.root
}

// Node resolves a handle. A stale or foreign handle is a structural error.
func (t *Tree) Node(ref Ref) (*Node, error) {
	if ref < 0 || int(ref) >= len(t.nodes) {
		return nil, fmt.Errorf("resolve ref %d: %w", ref, ErrNotFound)
	}
	return &t.nodes[ref], nil
}

// MustNode resolves a handle that is known to be valid, such as one just
// returned by Add. It panics on a bad handle.
func (t *Tree) MustNode(ref Ref) *Node {
	n, err := t.Node(ref)
	if err != nil {
		panic(err)
	}
	return n
}

// Add appends a new instance under parent and returns its handle.
func (t *Tree) Add(parent Ref, class, name string) (Ref, error) {
	if _, err := t.Node(parent); err != nil {
		return NilRef, fmt.Errorf("add %q under parent: %w", name, err)
	}
	ref := Ref(len(t.nodes))
	// Append may move the arena, so link through the index, not a held
	// pointer.
	t.nodes = append(t.nodes, Node{Class: class, Name: name})
	t.nodes[parent].Children = append(t.nodes[parent].Children, ref)
	return ref, nil
}

// SetProperty sets one property on an instance.
func (t *Tree) SetProperty(ref Ref, key string, value Value) error {
	n, err := t.Node(ref)
	if err != nil {
		return err
	}
	if n.Properties == nil {
		n.Properties = make(map[string]Value)
	}
	n.Properties[key] = value
	return nil
}

// Len reports the number of instances in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IsScriptClass reports whether a class name denotes executable source:
// a server script, a client script, or a library module.
func IsScriptClass(class string) bool {
	switch class {
	case "Script", "LocalScript", "ModuleScript":
		return true
	}
	return false
}
