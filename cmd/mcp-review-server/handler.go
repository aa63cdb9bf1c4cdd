package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gh "github.com/cexll/reviewbot/internal/github"
	"github.com/cexll/reviewbot/internal/review"
)

// PublishReviewParams defines the input parameters for the tool.
type PublishReviewParams struct {
	Result string `json:"result" jsonschema:"The analyzer result JSON (issues, summary, decision, stats)"`
}

// HandlePublishReview handles the publish_review tool call: it parses the
// analyzer result and runs the full sync pipeline against the PR thread
// configured in the environment.
func HandlePublishReview(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params PublishReviewParams,
) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Review Server] Received publish_review request")

	repo := os.Getenv("GITHUB_REPOSITORY")
	prNumberStr := os.Getenv("PR_NUMBER")
	token := os.Getenv("GITHUB_TOKEN")

	if params.Result == "" {
		return nil, nil, fmt.Errorf("result parameter is required")
	}

	prNumber, err := strconv.Atoi(prNumberStr)
	if err != nil || prNumber <= 0 {
		return nil, nil, fmt.Errorf("invalid PR_NUMBER: %q", prNumberStr)
	}

	result, err := review.ParseResult([]byte(params.Result))
	if err != nil {
		return toolError(fmt.Sprintf("unparseable result payload: %v", err)), nil, nil
	}

	report, err := review.Sync(ctx, gh.NewClient(token), repo, prNumber, result, review.DefaultLimits())
	if err != nil {
		log.Printf("[MCP Review Server] Sync failed: %v", err)
		return toolError(fmt.Sprintf("sync failed: %v", err)), nil, nil
	}

	resultText := fmt.Sprintf(`{
  "success": true,
  "repository": "%s",
  "pr_number": %d,
  "issues": %d,
  "delta": "%s"
}`, repo, prNumber, len(report.Entries), report.DeltaLine())

	log.Printf("[MCP Review Server] Published summary for %s#%d: %s", repo, prNumber, report.DeltaLine())

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: resultText},
		},
	}, nil, nil
}

func toolError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + message},
		},
		IsError: true,
	}
}
