// Command mcp exposes the task tools over MCP stdio so external agents
// can drive the same registry the chat endpoint uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskchat-backend/internal/config"
	"taskchat-backend/internal/db"
	"taskchat-backend/internal/tasks"
	"taskchat-backend/internal/tools"
)

func main() {
	// Log to stderr so stdout stays clean for JSON-RPC
	log.SetOutput(os.Stderr)
	log.SetPrefix("[taskchat-mcp] ")

	_ = godotenv.Load()

	cfg := config.Load()

	var store tasks.Store
	if cfg.DBHost != "" {
		database, err := db.Connect(cfg.ConnString())
		if err != nil {
			log.Fatal("failed to connect DB: ", err)
		}
		defer database.Close()
		if err := db.Migrate(database); err != nil {
			log.Fatal("failed to run migrations: ", err)
		}
		store = tasks.NewSQLStore(database)
		log.Println("Using PostgreSQL task store")
	} else {
		// No DB configured: in-memory store, tasks live as long as the
		// process does.
		store = tasks.NewMemoryStore()
		log.Println("DB_HOST not set, using in-memory task store")
	}

	registry := tools.NewRegistry(store)

	s := server.NewMCPServer(
		"taskchat-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	for _, t := range registry.List() {
		s.AddTool(mcpTool(t), handlerFor(registry, t.Name))
	}

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// mcpTool converts a registry catalog entry into an MCP tool definition.
func mcpTool(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}

	props, _ := t.InputSchema["properties"].(map[string]any)
	required := map[string]bool{}
	if req, ok := t.InputSchema["required"].([]string); ok {
		for _, name := range req {
			required[name] = true
		}
	}

	for name, raw := range props {
		prop, _ := raw.(map[string]any)
		desc, _ := prop["description"].(string)
		typ, _ := prop["type"].(string)

		var propOpts []mcp.PropertyOption
		propOpts = append(propOpts, mcp.Description(desc))
		if required[name] {
			propOpts = append(propOpts, mcp.Required())
		}

		switch typ {
		case "integer":
			opts = append(opts, mcp.WithNumber(name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(name, propOpts...))
		}
	}

	return mcp.NewTool(t.Name, opts...)
}

func handlerFor(registry *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		if args == nil {
			args = map[string]any{}
		}

		result, err := registry.Call(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if ok, _ := result["success"].(bool); !ok {
			msg, _ := result["error"].(string)
			return mcp.NewToolResultError(msg), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal result: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
