// Package model defines the resource engine's core data types — Resource,
// Source, Dependency sets, Category, and the catalog-level index — along
// with the field validation performed at construction time, mirroring the
// teacher's PromptAtom validation style in its prompt compiler.
package model

import (
	"regexp"
	"strings"

	"resourcehub/internal/rerr"
)

// Type is one of the fixed resource kinds the catalog recognizes.
type Type string

const (
	TypeAgent    Type = "agent"
	TypeCommand  Type = "command"
	TypeHook     Type = "hook"
	TypeTemplate Type = "template"
	TypeMCP      Type = "mcp"
)

// AllTypes returns every recognized resource type, in a fixed order used for
// both validation and catalog index enumeration.
func AllTypes() []Type {
	return []Type{TypeAgent, TypeCommand, TypeHook, TypeTemplate, TypeMCP}
}

// PluralDir returns the directory segment a type's resources live under,
// e.g. TypeAgent -> "agents".
func (t Type) PluralDir() string {
	return string(t) + "s"
}

func isValidType(t Type) bool {
	for _, known := range AllTypes() {
		if known == t {
			return true
		}
	}
	return false
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidID reports whether id matches the catalog's id grammar. Callers on a
// security boundary (constructing a file path from an id) should call this
// before building a path, since it also defends against traversal segments.
func ValidID(id string) bool {
	return id != "" && idPattern.MatchString(id)
}

// Source describes where a resource's installable content is fetched from.
type Source struct {
	URL    string
	SHA256 string
	Repo   string
	Path   string
}

// Dependencies splits a resource's dependency ids into the two disjoint
// lists the resolver treats differently.
type Dependencies struct {
	Required    []string
	Recommended []string
}

// Resource is the unit of installation: one entry in the catalog.
type Resource struct {
	ID          string
	Type        Type
	Name        string
	Description string
	Summary     string
	Version     string
	Author      string
	Source      Source
	Dependencies
	InstallPath string
	Metadata    map[string]interface{}
}

// NewResource validates every field spec.md §3 constrains and returns a
// Resource, or an InvalidSchema error naming the offending field.
func NewResource(id string, typ Type, name string, source Source, installPath string) (*Resource, error) {
	if !ValidID(id) {
		return nil, rerr.InvalidSchema("id", "invalid resource id %q", id)
	}
	if !isValidType(typ) {
		return nil, rerr.InvalidSchema("type", "unknown resource type %q for %s", typ, id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, rerr.InvalidSchema("name", "name is required for %s", id)
	}
	if installPath == "" {
		return nil, rerr.InvalidSchema("install_path", "install_path is required for %s", id)
	}
	return &Resource{
		ID:          id,
		Type:        typ,
		Name:        name,
		Source:      source,
		InstallPath: installPath,
	}, nil
}

// Key returns the resource's "type/id" string, the same form the catalog
// loader uses as its in-memory cache key.
func (r *Resource) Key() string {
	return string(r.Type) + "/" + r.ID
}

// AllDependencyIDs returns required ids, plus recommended ids when
// includeRecommended is set, in that order.
func (r *Resource) AllDependencyIDs(includeRecommended bool) []string {
	if !includeRecommended {
		return append([]string(nil), r.Required...)
	}
	out := make([]string, 0, len(r.Required)+len(r.Recommended))
	out = append(out, r.Required...)
	out = append(out, r.Recommended...)
	return out
}

// Clone returns a copy whose dependency slices and Metadata map are
// independent of the original's; values stored inside Metadata are shared,
// not copied.
func (r *Resource) Clone() *Resource {
	c := *r
	c.Required = append([]string(nil), r.Required...)
	c.Recommended = append([]string(nil), r.Recommended...)
	if r.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
