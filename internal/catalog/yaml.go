package catalog

// yamlIndex mirrors <base>/index.yaml exactly (spec.md §6): total, types,
// and version are the whole field set an external generator produces. No
// id list is carried here — per-type id discovery is done by listing the
// catalog's <type>s directories, not by trusting an index field.
type yamlIndex struct {
	Total   int            `yaml:"total"`
	Types   map[string]int `yaml:"types"`
	Version string         `yaml:"version"`
}

// yamlSource mirrors a resource's source block.
type yamlSource struct {
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256,omitempty"`
	Repo   string `yaml:"repo,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

// yamlDependencies mirrors a resource's dependencies block.
type yamlDependencies struct {
	Required    []string `yaml:"required,omitempty"`
	Recommended []string `yaml:"recommended,omitempty"`
}

// yamlResource mirrors <base>/<type>s/<id>.yaml exactly.
type yamlResource struct {
	ID           string                 `yaml:"id"`
	Type         string                 `yaml:"type"`
	Name         string                 `yaml:"name"`
	Description  string                 `yaml:"description,omitempty"`
	Summary      string                 `yaml:"summary,omitempty"`
	Version      string                 `yaml:"version,omitempty"`
	Author       string                 `yaml:"author,omitempty"`
	Source       yamlSource             `yaml:"source"`
	Dependencies *yamlDependencies      `yaml:"dependencies,omitempty"`
	InstallPath  string                 `yaml:"install_path"`
	Metadata     map[string]interface{} `yaml:"metadata,omitempty"`
}
