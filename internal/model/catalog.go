package model

// CatalogIndex is the top-level summary read from <base>/index.yaml.
type CatalogIndex struct {
	Total       int            `yaml:"total"`
	Types       map[Type]int   `yaml:"types"`
	Version     string         `yaml:"version"`
	ResourceIDs map[Type][]string `yaml:"-"`
}

// CategoryNode is one entry of a CategoryTree: a primary category, its
// secondary children, and the resource ids it directly contains.
type CategoryNode struct {
	Count    int
	Children map[string]int
	Members  []string
}

// CategoryTree maps a primary category name to its node. Built lazily by
// the category engine from the loaded resource set; never persisted.
type CategoryTree map[string]*CategoryNode

// DependencyGraph is a directed adjacency map: resource id to its required
// and recommended dependency ids. It is acyclic after validation; its
// transitive closure and topological order are derived on demand, never
// stored alongside it.
type DependencyGraph map[string]Dependencies

// InstallEntry is one item of an InstallPlan.
type InstallEntry struct {
	ID               string
	Recommended      bool
	AlreadyInstalled bool
	Size             int64
}

// InstallPlan is an ordered, valid topological sequence over the transitive
// closure of a user's selection.
type InstallPlan struct {
	Entries []InstallEntry
}

// IDs returns the plan's resource ids in plan order.
func (p InstallPlan) IDs() []string {
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.ID
	}
	return ids
}

// InstallRecord is one line of the per-user install history.
type InstallRecord struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	SHA256      string `json:"sha256"`
	InstalledAt string `json:"installed_at"`
	Path        string `json:"path"`
}
