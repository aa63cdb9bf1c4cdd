package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	requiredEnv := []string{"GITHUB_TOKEN", "GITHUB_REPOSITORY", "PR_NUMBER"}
	for _, env := range requiredEnv {
		if os.Getenv(env) == "" {
			log.Fatalf("[MCP Review Server] Missing required environment variable: %s", env)
		}
	}

	log.Println("[MCP Review Server] Starting Review Publish MCP Server v1.0.0")
	log.Printf("[MCP Review Server] Repository: %s PR: %s", os.Getenv("GITHUB_REPOSITORY"), os.Getenv("PR_NUMBER"))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "review-publish-server",
		Version: "v1.0.0",
	}, nil)

	tool := &mcp.Tool{
		Name:        "publish_review",
		Description: "Publish an analyzer result as the managed review summary comment on the configured pull request",
	}
	mcp.AddTool(server, tool, HandlePublishReview)
	log.Println("[MCP Review Server] Registered tool: publish_review")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[MCP Review Server] Received shutdown signal")
		cancel()
	}()

	log.Println("[MCP Review Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Review Server] Server error: %v", err)
	}
	log.Println("[MCP Review Server] Server stopped gracefully")
}
