package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "datasplit/internal/adapters/mcp"
	"datasplit/internal/adapters/metrics"
	"datasplit/internal/application/commands"
	"datasplit/internal/bootstrap"
	"datasplit/internal/config"
	"datasplit/internal/logging"
)

func main() {
	if err := run(os.Args[1:], server.ServeStdio); err != nil {
		fmt.Fprintf(os.Stderr, "datasplit-mcp: %v\n", err)
		os.Exit(1)
	}
}

// run serves until serve returns. The journal is closed before run returns,
// so callers may exit right after.
func run(args []string, serve func(*server.MCPServer, ...server.StdioOption) error) error {
	flags := flag.NewFlagSet("datasplit-mcp", flag.ContinueOnError)
	configFlag := flags.String("config", "", "YAML config file")
	dataRootFlag := flags.String("data-root", "", "directory holding one folder per concept")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *configFlag != "" {
		loaded, err := config.LoadFromFile(*configFlag)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if *dataRootFlag != "" {
		cfg.DataRoot = *dataRootFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// stdout carries the protocol
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	deps, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	recorder := metrics.NewRecorder()
	splitter := mcpadapter.NewSplitter(deps.Repo, deps.Negatives, deps.Journal, deps.Request,
		commands.WithObserver(recorder),
		commands.WithLogger(logger),
	)

	mcpServer := server.NewMCPServer(
		"datasplit-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterTools(mcpServer, splitter)

	err = serve(mcpServer)
	if cfg.MetricsFile != "" {
		if werr := recorder.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("metrics not written", "path", cfg.MetricsFile, "error", werr)
		}
	}
	if err != nil {
		logger.Error("server stopped", "error", err)
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
