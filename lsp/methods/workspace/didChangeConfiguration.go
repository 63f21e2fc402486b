package workspace

import (
	"encoding/json"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// DidChangeConfiguration handles the workspace/didChangeConfiguration notification
func DidChangeConfiguration(ctx types.ServerContext, context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	log.Info("Configuration changed")

	cfg := ParseConfiguration(params.Settings)
	ctx.SetConfig(cfg)
	log.Debug("New configuration: %+v", cfg)

	// Reindex against the new roots
	if err := ctx.RescanWorkspace(); err != nil {
		log.Warn("workspace rescan after configuration change: %v", err)
	}

	return nil
}

// ParseConfiguration extracts the server configuration from client
// settings, falling back to defaults for anything missing or malformed.
// Settings arrive nested under the extension's key.
func ParseConfiguration(settings any) types.ServerConfig {
	config := types.DefaultConfig()
	if settings == nil {
		return config
	}

	settingsMap, ok := settings.(map[string]any)
	if !ok {
		return config
	}

	ours := settings
	for _, key := range []string{"thymelab", "thymelab-language-server"} {
		if val, exists := settingsMap[key]; exists {
			ours = val
			break
		}
	}

	// Round-trip through JSON to parse into the struct
	jsonBytes, err := json.Marshal(ours)
	if err != nil {
		log.Warn("marshal configuration settings: %v", err)
		return config
	}
	if err := json.Unmarshal(jsonBytes, &config); err != nil {
		log.Warn("parse configuration settings: %v", err)
		return types.DefaultConfig()
	}

	// Empty values fall back to defaults rather than disabling features
	defaults := types.DefaultConfig()
	if config.TemplateRoot == "" {
		config.TemplateRoot = defaults.TemplateRoot
	}
	if config.StaticRoot == "" {
		config.StaticRoot = defaults.StaticRoot
	}
	if len(config.DataDirs) == 0 {
		config.DataDirs = defaults.DataDirs
	}

	return config
}
