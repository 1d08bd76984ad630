package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/treeport/internal/scene"
)

func buildTree(t *testing.T) *scene.Tree {
	t.Helper()
	tree := scene.NewTree("Model", "House")
	door, err := tree.Add(tree.Root(), "Part", "Door")
	require.NoError(t, err)
	require.NoError(t, tree.SetProperty(door, "Anchored", scene.Bool(true)))
	require.NoError(t, tree.SetProperty(door, "Transparency", scene.Number(0.5)))
	require.NoError(t, tree.SetProperty(door, "Material", scene.String("Wood")))
	_, err = tree.Add(door, "Attachment", "Hinge")
	require.NoError(t, err)
	return tree
}

func TestEncodeDecode(t *testing.T) {
	tree := buildTree(t)

	data, err := Encode(tree, tree.Root())
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	root := decoded.MustNode(decoded.Root())
	assert.Equal(t, "Model", root.Class)
	assert.Equal(t, "House", root.Name)
	require.Len(t, root.Children, 1)

	door := decoded.MustNode(root.Children[0])
	assert.Equal(t, "Door", door.Name)
	assert.Equal(t, scene.Bool(true), door.Properties["Anchored"])
	assert.Equal(t, scene.Number(0.5), door.Properties["Transparency"])
	assert.Equal(t, scene.String("Wood"), door.Properties["Material"])
	require.Len(t, door.Children, 1)
	assert.Equal(t, "Hinge", decoded.MustNode(door.Children[0]).Name)
}

func TestEncode_Deterministic(t *testing.T) {
	tree := buildTree(t)

	first, err := Encode(tree, tree.Root())
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		again, err := Encode(tree, tree.Root())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestEncode_BadRef(t *testing.T) {
	tree := scene.NewTree("Model", "House")
	_, err := Encode(tree, scene.Ref(99))
	require.Error(t, err)
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"not json", "{nope"},
		{"not an object", `[1, 2]`},
		{"missing className", `{"name": "x"}`},
		{"missing name", `{"className": "Model"}`},
		{"bad child", `{"className": "Model", "name": "m", "children": [42]}`},
		{"bad children type", `{"className": "Model", "name": "m", "children": {}}`},
		{"bad property type", `{"className": "Model", "name": "m", "properties": {"P": [1]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in))
			assert.Error(t, err)
		})
	}
}

func TestDecode_IntegerNumbers(t *testing.T) {
	tree, err := Decode([]byte(`{"className": "Part", "name": "p", "properties": {"Count": 3}}`))
	require.NoError(t, err)
	assert.Equal(t, scene.Number(3), tree.MustNode(tree.Root()).Properties["Count"])
}
