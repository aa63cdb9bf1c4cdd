package review

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Comment is the slice of a thread comment the engine needs.
type Comment struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}

// CommentStore is the capability set required of the comment-hosting
// platform. ListComments is page-based; a nextPage of 0 means the listing is
// exhausted. Retry and deadline policy live behind this interface, not in
// front of it.
type CommentStore interface {
	ListComments(ctx context.Context, repo string, number int, page int) (comments []Comment, nextPage int, err error)
	DeleteComment(ctx context.Context, repo string, commentID int64) error
	CreateComment(ctx context.Context, repo string, number int, body string) (int64, error)
}

// IsManaged reports whether a comment body was produced by this tool and is
// therefore eligible for deletion on resync. Bodies carrying the legacy
// per-item marker are still claimed so threads written by older renderings
// converge too.
func IsManaged(body string) bool {
	return strings.Contains(body, SummaryMarker) || strings.Contains(body, LegacyItemMarker)
}

// ListAll drains every page of a thread's comments. Classification must see
// the complete listing: a partial one would miss stale managed comments and
// break the one-comment invariant.
func ListAll(ctx context.Context, store CommentStore, repo string, number int) ([]Comment, error) {
	var all []Comment
	page := 1
	for {
		comments, nextPage, err := store.ListComments(ctx, repo, number, page)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments (page %d): %w", page, err)
		}
		all = append(all, comments...)
		if nextPage == 0 {
			break
		}
		page = nextPage
	}
	return all, nil
}

// Publisher replaces all managed comments on a thread with a single new one.
type Publisher struct {
	Store CommentStore
}

// Publish runs the idempotent replace protocol: list every comment, delete
// every managed one, create one comment with the new body. Deletions are all
// attempted before the create so the fresh comment cannot be misclassified as
// stale by a following listing.
//
// This is convergence, not a transaction. A failure mid-sequence leaves the
// thread with zero or multiple managed comments; the next successful run
// re-lists and re-deletes whatever it finds, restoring the invariant. Two
// runs racing on the same thread can still duplicate or drop the summary;
// that is a documented limitation of the delete-then-create protocol.
func (p *Publisher) Publish(ctx context.Context, repo string, number int, body string) error {
	comments, err := ListAll(ctx, p.Store, repo, number)
	if err != nil {
		return err
	}

	for _, c := range comments {
		if !IsManaged(c.Body) {
			continue
		}
		if err := p.Store.DeleteComment(ctx, repo, c.ID); err != nil {
			return fmt.Errorf("failed to delete stale comment %d: %w", c.ID, err)
		}
	}

	if _, err := p.Store.CreateComment(ctx, repo, number, body); err != nil {
		return fmt.Errorf("failed to create summary comment: %w", err)
	}
	return nil
}

// RunReport is what a completed sync hands back to its caller.
type RunReport struct {
	Body    string
	Delta   Delta
	Entries []Entry
}

// DeltaLine renders the delta in its report form, for log lines.
func (r *RunReport) DeltaLine() string {
	return fmt.Sprintf("+%d new | -%d resolved | %d unchanged", len(r.Delta.New), len(r.Delta.Resolved), r.Delta.Unchanged)
}

// Prepare runs the pure pipeline stages: fingerprint, dedupe, rank, recover
// the previous key set from the thread, compute the delta, render the body.
// Nothing on the thread is mutated.
func Prepare(ctx context.Context, store CommentStore, repo string, number int, res *Result, limits Limits) (*RunReport, error) {
	entries := Dedupe(res.Issues)
	Rank(entries)

	comments, err := ListAll(ctx, store, repo, number)
	if err != nil {
		return nil, err
	}
	previous := PreviousKeys(comments)
	delta := ComputeDelta(Keys(entries), previous)

	return &RunReport{
		Body:    Render(res, entries, delta, limits),
		Delta:   delta,
		Entries: entries,
	}, nil
}

// Sync executes a full run against a thread and publishes the result.
func Sync(ctx context.Context, store CommentStore, repo string, number int, res *Result, limits Limits) (*RunReport, error) {
	report, err := Prepare(ctx, store, repo, number, res, limits)
	if err != nil {
		return nil, err
	}

	pub := &Publisher{Store: store}
	if err := pub.Publish(ctx, repo, number, report.Body); err != nil {
		return nil, err
	}

	log.Printf("[Review] Published summary for %s#%d: %s", repo, number, report.DeltaLine())
	return report, nil
}
