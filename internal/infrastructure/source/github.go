package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// maxFileBytes bounds a single fetched file.
const maxFileBytes = 5 << 20

// GitHubFetcher reads files through the GitHub contents API.
type GitHubFetcher struct {
	token   string
	owner   string
	repo    string
	client  *http.Client
	baseURL string
}

// NewGitHubFetcher creates a GitHub fetcher. Token and repository fall back
// to GITHUB_TOKEN and GITHUB_REPOSITORY.
func NewGitHubFetcher(config Config) (*GitHubFetcher, error) {
	token := config.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("%w: set GITHUB_TOKEN or source.token", ErrMissingToken)
	}

	repo := config.Repository
	if repo == "" {
		repo = os.Getenv("GITHUB_REPOSITORY")
	}
	if repo == "" {
		return nil, ErrMissingRepository
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: invalid repository format %q (expected owner/repo)", ErrInvalidConfiguration, repo)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GITHUB_API_URL")
	}
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}

	return &GitHubFetcher{
		token:   token,
		owner:   parts[0],
		repo:    parts[1],
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Name identifies the fetcher in logs.
func (f *GitHubFetcher) Name() string { return string(ProviderGitHub) }

// FetchFileLines returns lines start..end of path at ref.
func (f *GitHubFetcher) FetchFileLines(ctx context.Context, ref, path string, start, end int) ([]ports.SourceLine, error) {
	rel, err := cleanRepoPath(path)
	if err != nil {
		return nil, ports.NewFetchError(ref, path, err)
	}

	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", f.baseURL, f.owner, f.repo, escapeSegments(rel))
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ports.NewFetchError(ref, path, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Accept", "application/vnd.github.raw")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	content, err := doFetch(f.client, req, "GitHub")
	if err != nil {
		return nil, ports.NewFetchError(ref, path, err)
	}
	return window(splitLines(content), start, end), nil
}

// doFetch performs req and returns the body of a 200 response.
func doFetch(client *http.Client, req *http.Request, host string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ports.ErrFileNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s API error: %s - %s", host, resp.Status, strings.TrimSpace(string(body)))
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(content) > maxFileBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxFileBytes)
	}
	return content, nil
}

func escapeSegments(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
