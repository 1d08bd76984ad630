package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/treeport/internal/config"
	"github.com/agentic-research/treeport/internal/export"
	"github.com/agentic-research/treeport/internal/ingest"
	"github.com/agentic-research/treeport/internal/logger"
	"github.com/agentic-research/treeport/internal/sink"
)

var (
	scriptsOnly bool
	projectName string
	dryRun      bool
)

func init() {
	exportCmd.Flags().BoolVar(&scriptsOnly, "scripts-only", false, "only materialize paths that lead to scripts")
	exportCmd.Flags().StringVar(&projectName, "project-name", "", "name written into the project manifest")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the export in memory and report what it would write")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [scene.json] [output-dir]",
	Short: "Convert a scene document into a project directory plus manifest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenePath, outputDir := args[0], args[1]

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("scripts-only") {
			cfg.ScriptsOnly = scriptsOnly
		}
		if projectName != "" {
			cfg.ProjectName = projectName
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		log := logger.New(cfg.LogLevel, cfg.LogFormat, nil)

		tree, err := ingest.LoadScene(scenePath)
		if err != nil {
			return err
		}
		log.Info("loaded scene", "path", scenePath, "instances", tree.Len())

		exportCfg := export.DefaultConfig()
		exportCfg.Log = log
		if cfg.ScriptsOnly {
			exportCfg.Mode = export.ModeScriptsOnly
		}
		for _, class := range cfg.RespectServices {
			exportCfg.RespectedServices[class] = struct{}{}
		}
		for _, class := range cfg.SkipServices {
			delete(exportCfg.RespectedServices, class)
		}

		var projectFS billy.Filesystem
		if dryRun {
			projectFS = memfs.New()
		} else {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			projectFS = osfs.New(outputDir)
		}

		writer, err := sink.NewWriter(projectFS, cfg.ProjectName)
		if err != nil {
			return err
		}
		if err := export.Run(tree, writer, exportCfg); err != nil {
			return err
		}

		stats := writer.Stats()
		summary := fmt.Sprintf("exported %s: %d files, %d folders, %d manifest partitions",
			cfg.ProjectName, stats.Files, stats.Folders, stats.Partitions)
		if dryRun {
			color.Yellow("%s (dry run, nothing written)", summary)
		} else {
			color.Green("%s -> %s", summary, outputDir)
		}
		return nil
	},
}
