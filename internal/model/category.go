package model

import "strings"

// Category is derived from a resource id's dash-separated segments, never
// persisted.
type Category struct {
	Primary   string
	Secondary string
}

// FromResourceID derives a Category from id by splitting on "-", following
// the heuristic spec.md §4.5 pins exactly: one segment maps to the
// synthetic "general" category; two segments give a primary with no
// secondary; three or more give primary plus the joined middle segments.
func FromResourceID(id string) Category {
	parts := strings.Split(id, "-")
	switch len(parts) {
	case 0:
		return Category{Primary: "general"}
	case 1:
		return Category{Primary: "general"}
	case 2:
		return Category{Primary: parts[0]}
	default:
		return Category{
			Primary:   parts[0],
			Secondary: strings.Join(parts[1:len(parts)-1], "-"),
		}
	}
}

// Key returns a stable string for use as a map key, distinguishing a bare
// primary from the same primary with a secondary ("mcp" vs "mcp/dev-team").
func (c Category) Key() string {
	if c.Secondary == "" {
		return c.Primary
	}
	return c.Primary + "/" + c.Secondary
}
