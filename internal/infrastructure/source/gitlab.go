package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// GitLabFetcher reads files through the GitLab repository files API.
type GitLabFetcher struct {
	token     string
	jobToken  bool
	projectID string // URL-encoded project path (group%2Fproject)
	client    *http.Client
	baseURL   string
}

// NewGitLabFetcher creates a GitLab fetcher. The token falls back to
// GITLAB_TOKEN, then CI_JOB_TOKEN; the project to CI_PROJECT_PATH.
func NewGitLabFetcher(config Config) (*GitLabFetcher, error) {
	token := config.Token
	jobToken := false
	if token == "" {
		token = os.Getenv("GITLAB_TOKEN")
	}
	if token == "" {
		token = os.Getenv("CI_JOB_TOKEN")
		jobToken = token != ""
	}
	if token == "" {
		return nil, fmt.Errorf("%w: set GITLAB_TOKEN or CI_JOB_TOKEN", ErrMissingToken)
	}

	repo := config.Repository
	if repo == "" {
		repo = os.Getenv("CI_PROJECT_PATH")
	}
	if repo == "" {
		return nil, ErrMissingRepository
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("CI_API_V4_URL")
	}
	if baseURL == "" {
		baseURL = "https://gitlab.com/api/v4"
	}

	return &GitLabFetcher{
		token:     token,
		jobToken:  jobToken,
		projectID: url.PathEscape(repo),
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

// Name identifies the fetcher in logs.
func (f *GitLabFetcher) Name() string { return string(ProviderGitLab) }

// FetchFileLines returns lines start..end of path at ref.
func (f *GitLabFetcher) FetchFileLines(ctx context.Context, ref, path string, start, end int) ([]ports.SourceLine, error) {
	rel, err := cleanRepoPath(path)
	if err != nil {
		return nil, ports.NewFetchError(ref, path, err)
	}
	if ref == "" {
		ref = "HEAD"
	}

	u := fmt.Sprintf("%s/projects/%s/repository/files/%s/raw?ref=%s",
		f.baseURL, f.projectID, url.PathEscape(rel), url.QueryEscape(ref))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ports.NewFetchError(ref, path, fmt.Errorf("failed to create request: %w", err))
	}
	if f.jobToken {
		req.Header.Set("JOB-TOKEN", f.token)
	} else {
		req.Header.Set("PRIVATE-TOKEN", f.token)
	}

	content, err := doFetch(f.client, req, "GitLab")
	if err != nil {
		return nil, ports.NewFetchError(ref, path, err)
	}
	return window(splitLines(content), start, end), nil
}
