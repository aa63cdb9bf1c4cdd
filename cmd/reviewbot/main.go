package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/cexll/reviewbot/internal/config"
	gh "github.com/cexll/reviewbot/internal/github"
	"github.com/cexll/reviewbot/internal/review"
	"github.com/cexll/reviewbot/internal/web"
)

var (
	loadDotEnv         = godotenv.Load
	loadConfig         = config.Load
	defaultListenServe = http.ListenAndServe
)

type options struct {
	repo   string
	pr     int
	input  string
	dryRun bool
	serve  bool
	addr   string
}

func main() {
	opts := parseFlags(os.Args[1:])
	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("reviewbot failed: %v", err)
	}
}

func parseFlags(args []string) *options {
	opts := &options{}
	fs := flag.NewFlagSet("reviewbot", flag.ExitOnError)
	fs.StringVar(&opts.repo, "repo", "", "repository slug (owner/repo), defaults to GITHUB_REPOSITORY")
	fs.IntVar(&opts.pr, "pr", 0, "pull request number, defaults to PR_NUMBER")
	fs.StringVar(&opts.input, "input", "-", "analyzer result JSON file, or - for stdin")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "render the comment body without publishing")
	fs.BoolVar(&opts.serve, "serve", false, "run the HTTP ingestion server instead of a one-shot sync")
	fs.StringVar(&opts.addr, "addr", "", "listen address for serve mode")
	fs.Parse(args)
	return opts
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout io.Writer) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.repo != "" {
		cfg.Repo = opts.repo
	}
	if opts.pr > 0 {
		cfg.PRNumber = opts.pr
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}

	if opts.serve {
		return serve(cfg)
	}
	return syncOnce(ctx, cfg, opts, stdin, stdout)
}

func serve(cfg *config.Config) error {
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	web.NewHandler(store, cfg.Limits).RegisterRoutes(router)

	log.Printf("Starting reviewbot server on %s", cfg.Addr)
	return defaultListenServe(cfg.Addr, router)
}

func syncOnce(ctx context.Context, cfg *config.Config, opts *options, stdin io.Reader, stdout io.Writer) error {
	payload, err := readInput(opts.input, stdin)
	if err != nil {
		log.Printf("Warning: cannot read result payload: %v; skipping publish", err)
		return nil
	}

	result, err := review.ParseResult(payload)
	if err != nil {
		log.Printf("Warning: %v; skipping publish", err)
		return nil
	}

	if !cfg.HasThread() {
		log.Printf("Warning: no PR thread configured (repo=%q pr=%d); skipping publish", cfg.Repo, cfg.PRNumber)
		return nil
	}

	store, err := buildStore(cfg)
	if err != nil {
		if !opts.dryRun {
			return err
		}
		// Dry runs work without credentials: render against an empty thread.
		log.Printf("Warning: %v; dry run proceeds with first-run semantics", err)
		store = emptyStore{}
	}

	if opts.dryRun {
		report, err := review.Prepare(ctx, store, cfg.Repo, cfg.PRNumber, result, cfg.Limits)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, report.Body)
		log.Printf("Dry run for %s#%d: %s", cfg.Repo, cfg.PRNumber, report.DeltaLine())
		return nil
	}

	_, err = review.Sync(ctx, store, cfg.Repo, cfg.PRNumber, result, cfg.Limits)
	return err
}

// buildStore selects the GitHub auth method: a plain token, or a GitHub App
// installation token minted for the run.
func buildStore(cfg *config.Config) (review.CommentStore, error) {
	switch {
	case cfg.GitHubToken != "":
		return gh.NewClient(cfg.GitHubToken), nil
	case cfg.GitHubAppID != "" && cfg.GitHubPrivateKey != "":
		appAuth := &gh.AppAuth{AppID: cfg.GitHubAppID, PrivateKey: cfg.GitHubPrivateKey}
		token, err := appAuth.GetInstallationToken(cfg.Repo)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate as GitHub App: %w", err)
		}
		return gh.NewClient(token.Token), nil
	default:
		return nil, fmt.Errorf("no GitHub credentials configured (set GITHUB_TOKEN or GITHUB_APP_ID and GITHUB_PRIVATE_KEY)")
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// emptyStore backs credential-less dry runs with an empty thread.
type emptyStore struct{}

func (emptyStore) ListComments(ctx context.Context, repo string, number int, page int) ([]review.Comment, int, error) {
	return nil, 0, nil
}

func (emptyStore) DeleteComment(ctx context.Context, repo string, commentID int64) error {
	return nil
}

func (emptyStore) CreateComment(ctx context.Context, repo string, number int, body string) (int64, error) {
	return 0, nil
}
