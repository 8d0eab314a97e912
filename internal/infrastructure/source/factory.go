package source

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// New creates the fetcher named by config. ProviderNone returns a nil
// fetcher, which disables source context. ProviderAuto picks the code host
// of the CI environment and falls back to the local checkout.
func New(config Config) (ports.SourceFetcher, error) {
	provider := config.Provider
	if provider == "" || provider == ProviderAuto {
		provider = Detect()
	}

	switch provider {
	case ProviderNone:
		return nil, nil
	case ProviderLocal:
		return NewLocalFetcher(config.Root), nil
	case ProviderGitHub:
		f, err := NewGitHubFetcher(config)
		if err != nil {
			return nil, err
		}
		return f, nil
	case ProviderGitLab:
		f, err := NewGitLabFetcher(config)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// Detect returns the provider matching the CI environment. Without a code
// host token the local checkout is used.
func Detect() ProviderName {
	switch {
	case IsGitHubActions() && os.Getenv("GITHUB_TOKEN") != "":
		return ProviderGitHub
	case IsGitLabCI() && (os.Getenv("GITLAB_TOKEN") != "" || os.Getenv("CI_JOB_TOKEN") != ""):
		return ProviderGitLab
	default:
		return ProviderLocal
	}
}

// IsGitHubActions returns true if running in GitHub Actions.
func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// IsGitLabCI returns true if running in GitLab CI.
func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// NewFromSettings parses a provider name from configuration and creates the
// matching fetcher.
func NewFromSettings(provider, root, repository, baseURL, token string) (ports.SourceFetcher, error) {
	name, err := ParseProviderName(provider)
	if err != nil {
		return nil, err
	}
	return New(Config{
		Provider:   name,
		Root:       root,
		Repository: repository,
		BaseURL:    baseURL,
		Token:      token,
	})
}
