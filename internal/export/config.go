package export

import (
	_ "embed"
	"log/slog"
	"strings"

	"github.com/agentic-research/treeport/internal/classdb"
)

// Mode selects how much of the tree is materialized.
type Mode uint8

const (
	// ModeFull materializes every representable subtree.
	ModeFull Mode = iota
	// ModeScriptsOnly prunes output to the paths needed to reach scripts.
	ModeScriptsOnly
)

//go:embed respected-services.txt
var rawRespectedServices string

//go:embed non-tree-services.txt
var rawNonTreeServices string

// Config is the immutable per-run configuration. Build one with
// DefaultConfig and adjust before starting a run.
type Config struct {
	Mode Mode

	// Classes answers service lookups. A nil database degrades every
	// lookup to "not a service" with a logged warning.
	Classes classdb.Database

	// RespectedServices is the allow-list of service classes that are
	// exported at all; services outside it are dropped with their
	// entire subtree.
	RespectedServices map[string]struct{}

	// NonTreeServices are respected services that get a folder but no
	// manifest partition.
	NonTreeServices map[string]struct{}

	Log *slog.Logger
}

// DefaultConfig returns the embedded allow-lists, the embedded class
// database, and the default logger.
func DefaultConfig() Config {
	return Config{
		Mode:              ModeFull,
		Classes:           classdb.Load(),
		RespectedServices: parseSet(rawRespectedServices),
		NonTreeServices:   parseSet(rawNonTreeServices),
		Log:               slog.Default(),
	}
}

func (c *Config) isService(class string) bool {
	if c.Classes == nil {
		return false
	}
	return c.Classes.IsService(class)
}

func (c *Config) isRespected(class string) bool {
	_, ok := c.RespectedServices[class]
	return ok
}

func (c *Config) isNonTree(class string) bool {
	_, ok := c.NonTreeServices[class]
	return ok
}

func parseSet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	return set
}
