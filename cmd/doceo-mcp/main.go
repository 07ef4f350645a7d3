package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/services/tools"
	badgerstorage "github.com/ternarybob/doceo/internal/storage/badger"
)

func main() {
	configPath := os.Getenv("DOCEO_CONFIG")
	if configPath == "" {
		configPath = "doceo.toml"
	}

	var config *common.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		config, err = common.LoadFromFile(configPath)
	} else {
		config = common.NewDefaultConfig()
		err = config.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	db, err := badgerstorage.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer db.Close()

	retriever := badgerstorage.NewCourseStorage(db, logger)
	searchTool := tools.NewSearchContentTool(retriever, config.Search.MaxResults, logger)
	outlineTool := tools.NewOutlineTool(retriever, logger)

	mcpServer := server.NewMCPServer(
		"doceo",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchContentTool(), handleSearchContent(searchTool, logger))
	mcpServer.AddTool(createCourseOutlineTool(), handleCourseOutline(outlineTool, logger))
	mcpServer.AddTool(createListCoursesTool(), handleListCourses(retriever, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
