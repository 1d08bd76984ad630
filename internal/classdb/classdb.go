// Package classdb answers class-metadata questions for the exporter,
// backed by an embedded snapshot of the engine's class catalog.
package classdb

import (
	_ "embed"
	"strings"
)

//go:embed services.txt
var rawServices string

// Database reports class metadata. The exporter treats a missing database
// as "nothing is a service" rather than failing a run.
type Database interface {
	IsService(class string) bool
}

// Static is a Database backed by a fixed set of service class names.
type Static struct {
	services map[string]struct{}
}

// Load returns the embedded class database.
func Load() *Static {
	return &Static{services: parseList(rawServices)}
}

// FromList builds a database from an explicit service-class list,
// mostly useful in tests.
func FromList(classes []string) *Static {
	s := &Static{services: make(map[string]struct{}, len(classes))}
	for _, c := range classes {
		s.services[c] = struct{}{}
	}
	return s
}

// IsService reports whether the class is tagged as a service. Unknown
// classes are not services.
func (s *Static) IsService(class string) bool {
	_, ok := s.services[class]
	return ok
}

func parseList(raw string) map[string]struct{} {
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
