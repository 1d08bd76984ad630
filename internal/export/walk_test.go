package export_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/treeport/api"
	"github.com/agentic-research/treeport/internal/export"
	"github.com/agentic-research/treeport/internal/scene"
	"github.com/agentic-research/treeport/internal/sink"
)

func runConfig(mode export.Mode) export.Config {
	cfg := export.DefaultConfig()
	cfg.Mode = mode
	cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func record(t *testing.T, tree *scene.Tree, cfg export.Config) *sink.Recorder {
	t.Helper()
	rec := sink.NewRecorder("project")
	require.NoError(t, export.Run(tree, rec, cfg))
	require.True(t, rec.Finished, "Finish must be called exactly once per run")
	return rec
}

func TestRun_ScriptLeafAtRoot(t *testing.T) {
	tree := scene.NewTree("DataModel", "DataModel")
	ref, _ := tree.Add(tree.Root(), "Script", "Main")
	tree.SetProperty(ref, "Source", scene.String("print('hi')"))

	rec := record(t, tree, runConfig(export.ModeFull))

	require.Len(t, rec.Instructions, 1)
	file, ok := rec.Instructions[0].(export.CreateFile)
	require.True(t, ok)
	assert.Equal(t, "Main.server.luau", file.Path)
	assert.Equal(t, "print('hi')", string(file.Contents))
}

func TestRun_UnrespectedServiceDropped(t *testing.T) {
	tree := scene.NewTree("DataModel", "DataModel")
	lighting, _ := tree.Add(tree.Root(), "Lighting", "Lighting")
	// Even a script below an unrespected service must not be exported.
	s, _ := tree.Add(lighting, "Script", "Sun")
	tree.SetProperty(s, "Source", scene.String("-- sun"))

	rec := record(t, tree, runConfig(export.ModeFull))
	assert.Empty(t, rec.Instructions)
}

func TestRun_PlayerScriptsRoot(t *testing.T) {
	tree := scene.NewTree("DataModel", "DataModel")
	sp, _ := tree.Add(tree.Root(), "StarterPlayer", "StarterPlayer")
	a, _ := tree.Add(sp, "StarterPlayerScripts", "A")
	scriptRef, _ := tree.Add(a, "LocalScript", "Boot")
	tree.SetProperty(scriptRef, "Source", scene.String("-- boot"))
	tree.Add(sp, "StarterCharacterScripts", "B")

	rec := record(t, tree, runConfig(export.ModeFull))
	require.NotEmpty(t, rec.Instructions)

	folder, ok := rec.Instructions[0].(export.CreateFolder)
	require.True(t, ok)
	assert.Equal(t, "StarterPlayer", folder.Path)

	add, ok := rec.Instructions[1].(export.AddToTree)
	require.True(t, ok)
	assert.Equal(t, "StarterPlayer", add.Name)
	assert.Equal(t, "StarterPlayer", add.Partition.ClassName)
	assert.Empty(t, add.Partition.Path, "the root partition itself carries no path")

	require.Len(t, add.Partition.Children, 2)
	assert.Equal(t, "StarterPlayer/A", add.Partition.Children["A"].Path)
	assert.Equal(t, "StarterPlayer/B", add.Partition.Children["B"].Path)

	// Recursion continues into the children independently of service rules.
	var bootPath string
	for _, ins := range rec.Instructions[2:] {
		if f, ok := ins.(export.CreateFile); ok && string(f.Contents) == "-- boot" {
			bootPath = f.Path
		}
	}
	assert.Equal(t, "StarterPlayer/A/Boot.client.luau", bootPath)
}

func TestRun_ScriptsOnlyPrunesScriptlessSubtrees(t *testing.T) {
	tree := scene.NewTree("DataModel", "DataModel")
	ws, _ := tree.Add(tree.Root(), "Workspace", "Workspace")
	model, _ := tree.Add(ws, "Model", "Terrain")
	tree.Add(model, "Part", "Rock")

	rec := record(t, tree, runConfig(export.ModeScriptsOnly))
	assert.Empty(t, rec.Instructions)
}

func TestRun_StickyScriptsOnlyBelowModelBlob(t *testing.T) {
	// Workspace/House gets encoded as a model blob; the script nested two
	// levels below must still appear as a real file, while the plain Part
	// between them is only traversed, never materialized.
	tree := scene.NewTree("DataModel", "DataModel")
	ws, _ := tree.Add(tree.Root(), "Workspace", "Workspace")
	house, _ := tree.Add(ws, "Model", "House")
	door, _ := tree.Add(house, "Part", "Door")
	opener, _ := tree.Add(door, "Script", "Opener")
	tree.SetProperty(opener, "Source", scene.String("-- open"))
	tree.Add(house, "Part", "Window")

	rec := record(t, tree, runConfig(export.ModeFull))

	var files, folders []string
	for _, ins := range rec.Instructions {
		switch v := ins.(type) {
		case export.CreateFile:
			files = append(files, v.Path)
		case export.CreateFolder:
			folders = append(folders, v.Path)
		}
	}

	assert.Contains(t, files, "Workspace/House/init.model.json")
	assert.Contains(t, files, "Workspace/House/Door/Opener.server.luau")
	assert.NotContains(t, folders, "Workspace/House/Door",
		"non-script nodes inside a blob subtree are traversed, not materialized")
	assert.NotContains(t, folders, "Workspace/House/Window")
}

func TestRun_ManifestCollision(t *testing.T) {
	tree := scene.NewTree("DataModel", "DataModel")
	tree.Add(tree.Root(), "ServerStorage", "ServerStorage")
	// A second node of the same name lands in the manifest under _2.
	tree.Add(tree.Root(), "ServerStorage", "ServerStorage")

	rec := record(t, tree, runConfig(export.ModeFull))

	first, ok := rec.Manifest.Tree["ServerStorage"]
	require.True(t, ok)
	assert.Equal(t, api.SourceDir+"/ServerStorage", first.Path)

	second, ok := rec.Manifest.Tree["ServerStorage_2"]
	require.True(t, ok)
	assert.Equal(t, api.SourceDir+"/ServerStorage_2", second.Path)
}

func TestRun_Deterministic(t *testing.T) {
	build := func() *scene.Tree {
		tree := scene.NewTree("DataModel", "DataModel")
		ws, _ := tree.Add(tree.Root(), "Workspace", "Workspace")
		model, _ := tree.Add(ws, "Model", "House")
		s, _ := tree.Add(model, "Script", "A")
		tree.SetProperty(s, "Source", scene.String("-- a"))
		tree.SetProperty(model, "Pinned", scene.Bool(true))
		tree.Add(ws, "Folder", "Maps")
		ss, _ := tree.Add(tree.Root(), "ServerScriptService", "ServerScriptService")
		m, _ := tree.Add(ss, "ModuleScript", "Util")
		tree.SetProperty(m, "Source", scene.String("return {}"))
		return tree
	}

	a := record(t, build(), runConfig(export.ModeFull))
	b := record(t, build(), runConfig(export.ModeFull))

	assert.Equal(t, a.Instructions, b.Instructions)

	ma, err := a.Manifest.Encode()
	require.NoError(t, err)
	mb, err := b.Manifest.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(ma), string(mb))
}

func TestRun_SinkFailureAborts(t *testing.T) {
	tree := scene.NewTree("DataModel", "DataModel")
	tree.Add(tree.Root(), "Folder", "Assets")

	err := export.Run(tree, &failingSink{}, runConfig(export.ModeFull))
	require.Error(t, err)
}

type failingSink struct{}

func (f *failingSink) Apply(export.Instruction) error        { return assert.AnError }
func (f *failingSink) ApplyBatch([]export.Instruction) error { return assert.AnError }
func (f *failingSink) Finish() error                         { return nil }
