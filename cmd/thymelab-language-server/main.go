package main

import (
	"fmt"
	"os"

	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/internal/version"
	"github.com/thkwag/thymelab-ls/lsp"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println(version.GetFullVersion())
		return
	}

	// Create and run the LSP server
	server, err := lsp.NewServer()
	if err != nil {
		log.Error("Failed to create LSP server: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := server.Close(); err != nil {
			log.Error("Failed to close server: %v", err)
		}
	}()

	// Run with stdio transport (for VSCode and other editors)
	if err := server.RunStdio(); err != nil {
		log.Error("Server error: %v", err)
		os.Exit(1)
	}
}
