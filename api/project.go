// Package api defines the on-disk project schema the exporter emits:
// the project manifest, its tree partitions, and directory meta sidecars.
// This is the contract consumed by the external sync tool.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"sort"
)

// SourceDir is the subdirectory of the project root that holds every
// exported file. Finalized partition paths are prefixed with it.
const SourceDir = "src"

// ManifestFilename is the fixed name of the project manifest.
const ManifestFilename = "default.project.json"

// RootClassName is the synthetic class tag of the manifest's logical root.
const RootClassName = "DataModel"

// TreePartition describes an instance that the sync tool reconciles from
// configuration rather than from a literal file.
type TreePartition struct {
	ClassName string
	// Children maps instance names to nested partitions. Key order is
	// irrelevant; serialization sorts.
	Children               map[string]TreePartition
	IgnoreUnknownInstances bool
	// Path is the optional explicit on-disk location, slash-separated.
	Path string
}

// Partition builds the canonical single-instance partition: no children,
// unknown instances ignored, pinned to an explicit path.
func Partition(className, p string) TreePartition {
	return TreePartition{
		ClassName:              className,
		Children:               map[string]TreePartition{},
		IgnoreUnknownInstances: true,
		Path:                   p,
	}
}

// MarshalJSON writes the partition with its meta keys first and child
// entries in sorted order, so output is deterministic.
func (p TreePartition) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"$className":`)
	if err := writeJSON(&buf, p.ClassName); err != nil {
		return nil, err
	}
	buf.WriteString(`,"$ignoreUnknownInstances":`)
	if err := writeJSON(&buf, p.IgnoreUnknownInstances); err != nil {
		return nil, err
	}
	if p.Path != "" {
		buf.WriteString(`,"$path":`)
		if err := writeJSON(&buf, p.Path); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(p.Children) {
		buf.WriteByte(',')
		if err := writeJSON(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		child, err := json.Marshal(p.Children[name])
		if err != nil {
			return nil, err
		}
		buf.Write(child)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is the inverse of MarshalJSON; it exists for verification
// paths that read a manifest back.
func (p *TreePartition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = TreePartition{Children: map[string]TreePartition{}}
	for key, value := range raw {
		switch key {
		case "$className":
			if err := json.Unmarshal(value, &p.ClassName); err != nil {
				return fmt.Errorf("partition $className: %w", err)
			}
		case "$ignoreUnknownInstances":
			if err := json.Unmarshal(value, &p.IgnoreUnknownInstances); err != nil {
				return fmt.Errorf("partition $ignoreUnknownInstances: %w", err)
			}
		case "$path":
			if err := json.Unmarshal(value, &p.Path); err != nil {
				return fmt.Errorf("partition $path: %w", err)
			}
		default:
			var child TreePartition
			if err := json.Unmarshal(value, &child); err != nil {
				return fmt.Errorf("partition child %q: %w", key, err)
			}
			p.Children[key] = child
		}
	}
	return nil
}

// MetaFile is the per-directory sidecar telling the sync tool how to
// reconcile a directory with an instance it cannot otherwise represent.
type MetaFile struct {
	ClassName              string `json:"className,omitempty"`
	IgnoreUnknownInstances bool   `json:"ignoreUnknownInstances"`
}

// Encode serializes the sidecar the way it is written to disk.
func (m MetaFile) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Manifest is the project document written once at the end of a run.
type Manifest struct {
	Name string
	Tree map[string]TreePartition
}

// NewManifest creates an empty manifest with the given project name.
func NewManifest(name string) *Manifest {
	return &Manifest{Name: name, Tree: map[string]TreePartition{}}
}

// Add inserts a top-level partition, disambiguating name collisions with a
// _2, _3, ... suffix and rewriting the colliding partition's final path
// component to match. The partition's path and its direct children's paths
// are prefixed with SourceDir. Add returns the name actually used.
func (m *Manifest) Add(name string, p TreePartition) string {
	if _, taken := m.Tree[name]; taken {
		base := name
		for i := 2; ; i++ {
			candidate := fmt.Sprintf("%s_%d", base, i)
			if _, taken := m.Tree[candidate]; !taken {
				name = candidate
				break
			}
		}
		if p.Path != "" {
			p.Path = path.Join(path.Dir(p.Path), name)
		}
	}

	if p.Path != "" {
		p.Path = path.Join(SourceDir, p.Path)
	}
	if len(p.Children) > 0 {
		children := make(map[string]TreePartition, len(p.Children))
		for childName, child := range p.Children {
			if child.Path != "" {
				child.Path = path.Join(SourceDir, child.Path)
			}
			children[childName] = child
		}
		p.Children = children
	}

	m.Tree[name] = p
	return name
}

// MarshalJSON writes {"name": ..., "tree": {...}} with the synthetic
// root class tag first and entries sorted by name.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	if err := writeJSON(&buf, m.Name); err != nil {
		return nil, err
	}
	buf.WriteString(`,"tree":{"$className":`)
	if err := writeJSON(&buf, RootClassName); err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(m.Tree) {
		buf.WriteByte(',')
		if err := writeJSON(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		entry, err := json.Marshal(m.Tree[name])
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Encode serializes the manifest as the pretty-printed document written
// to the project root.
func (m *Manifest) Encode() ([]byte, error) {
	compact, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func sortedKeys(m map[string]TreePartition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
