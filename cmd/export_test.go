package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `{
  "className": "DataModel",
  "name": "DataModel",
  "children": [
    {
      "className": "ServerScriptService",
      "name": "ServerScriptService",
      "children": [
        {"className": "Script", "name": "Main", "properties": {"Source": "print('hi')"}}
      ]
    }
  ]
}`

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "place.scene.json")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0o644))
	return path
}

func TestExportCommand(t *testing.T) {
	scenePath := writeScene(t)
	outDir := filepath.Join(t.TempDir(), "out")

	rootCmd.SetArgs([]string{
		"export", scenePath, outDir,
		"--dry-run=false", "--project-name", "cli-test",
	})
	require.NoError(t, rootCmd.Execute())

	script, err := os.ReadFile(filepath.Join(outDir, "src", "ServerScriptService", "Main.server.luau"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(script))

	manifest, err := os.ReadFile(filepath.Join(outDir, "default.project.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"name": "cli-test"`)
}

func TestExportCommand_DryRunWritesNothing(t *testing.T) {
	scenePath := writeScene(t)
	outDir := filepath.Join(t.TempDir(), "out")

	rootCmd.SetArgs([]string{"export", scenePath, outDir, "--dry-run=true"})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "dry run must not create the output dir")
}

func TestExportCommand_MissingScene(t *testing.T) {
	outDir := t.TempDir()
	rootCmd.SetArgs([]string{
		"export", filepath.Join(outDir, "absent.json"), outDir, "--dry-run=false",
	})
	require.Error(t, rootCmd.Execute())
}
