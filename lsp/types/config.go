package types

// ServerConfig represents the server configuration
type ServerConfig struct {
	// TemplateRoot is the workspace-relative directory holding Thymeleaf
	// templates
	TemplateRoot string `json:"templateRoot"`

	// StaticRoot is the workspace-relative directory holding static
	// resources referenced from @{...} links
	StaticRoot string `json:"staticRoot"`

	// DataDirs are the directories searched for variable schema files
	DataDirs []string `json:"dataDirs"`

	// SchemaPatterns are the glob patterns for schema discovery under each
	// data dir. Empty means the built-in defaults.
	SchemaPatterns []string `json:"schemaPatterns"`
}

// DefaultConfig returns the default server configuration, matching the
// standard Spring Boot resource layout.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		TemplateRoot: "src/main/resources/templates",
		StaticRoot:   "src/main/resources/static",
		DataDirs:     []string{".thymelab/data"},
	}
}
