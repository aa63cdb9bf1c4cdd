// Package github adapts the GitHub issue comment API to the review engine's
// CommentStore interface. A pull request's conversation thread is addressed
// the way the issues API addresses it: "owner/repo" plus the PR number.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v66/github"

	"github.com/cexll/reviewbot/internal/review"
)

const commentsPerPage = 100

// Client implements review.CommentStore against the GitHub REST API.
type Client struct {
	gh *gogithub.Client
}

var _ review.CommentStore = (*Client)(nil)

// NewClient creates a client authenticated with a token (PAT or App
// installation token).
func NewClient(token string) *Client {
	return &Client{gh: gogithub.NewClient(nil).WithAuthToken(token)}
}

// NewClientWithBaseURL points the client at a test server or GHES instance.
func NewClientWithBaseURL(token, baseURL string) (*Client, error) {
	c := gogithub.NewClient(nil).WithAuthToken(token)
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c.BaseURL = u
	return &Client{gh: c}, nil
}

// ListComments returns one page of issue comments and the next page number
// (0 when the listing is exhausted). The engine drains pages itself.
func (c *Client) ListComments(ctx context.Context, repo string, number int, page int) ([]review.Comment, int, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, 0, err
	}

	opts := &gogithub.IssueListCommentsOptions{
		ListOptions: gogithub.ListOptions{Page: page, PerPage: commentsPerPage},
	}

	var comments []review.Comment
	var nextPage int
	err = retryWithBackoff(func() error {
		ghComments, resp, err := c.gh.Issues.ListComments(ctx, owner, name, number, opts)
		if err != nil {
			return fmt.Errorf("list comments for %s#%d: %w", repo, number, err)
		}

		comments = comments[:0]
		for _, gc := range ghComments {
			comments = append(comments, review.Comment{
				ID:        gc.GetID(),
				Body:      gc.GetBody(),
				CreatedAt: gc.GetCreatedAt().Time,
			})
		}
		nextPage = resp.NextPage
		return nil
	})
	return comments, nextPage, err
}

// DeleteComment deletes a single comment by ID.
func (c *Client) DeleteComment(ctx context.Context, repo string, commentID int64) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	return retryWithBackoff(func() error {
		if _, err := c.gh.Issues.DeleteComment(ctx, owner, name, commentID); err != nil {
			return fmt.Errorf("delete comment %d on %s: %w", commentID, repo, err)
		}
		return nil
	})
}

// CreateComment creates a comment on the thread and returns its ID.
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) (int64, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return 0, err
	}

	var id int64
	err = retryWithBackoff(func() error {
		created, _, err := c.gh.Issues.CreateComment(ctx, owner, name, number, &gogithub.IssueComment{
			Body: gogithub.String(body),
		})
		if err != nil {
			return fmt.Errorf("create comment on %s#%d: %w", repo, number, err)
		}
		id = created.GetID()
		return nil
	})
	return id, err
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", repo)
	}
	return parts[0], parts[1], nil
}
