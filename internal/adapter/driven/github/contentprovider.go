// Package github implements the ContentProvider port using the go-github
// library, for anchoring against a file's content at a remote ref.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/reviewpin/reviewpin/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ContentProvider = (*Provider)(nil)

// Provider fetches whole-file content from a GitHub repository at a fixed
// ref. It satisfies the engine's content boundary: the engine only ever
// needs the complete current text of a file, never hunk-level diffs.
type Provider struct {
	gh    *gh.Client
	owner string
	repo  string
	ref   string
}

// NewProvider creates a GitHub content provider for repoFullName
// ("owner/repo") at the given ref, with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewProvider(token, repoFullName, ref string) (*Provider, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Provider{gh: client, owner: owner, repo: repo, ref: ref}, nil
}

// NewProviderWithHTTPClient creates a Provider with a custom http.Client and
// base URL. Intended for testing, allowing injection of an httptest server.
func NewProviderWithHTTPClient(httpClient *http.Client, baseURL, repoFullName, ref string) (*Provider, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Provider{gh: client, owner: owner, repo: repo, ref: ref}, nil
}

// FileContent returns the full decoded text of the file at path on the
// provider's ref. A 404 from the API reports found=false, not an error.
func (p *Provider) FileContent(ctx context.Context, path string) (string, bool, error) {
	file, _, resp, err := p.gh.Repositories.GetContents(ctx, p.owner, p.repo, path,
		&gh.RepositoryContentGetOptions{Ref: p.ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetching %s@%s: %w", path, p.ref, err)
	}

	if file == nil {
		// Path resolved to a directory listing.
		return "", false, fmt.Errorf("fetching %s@%s: path is a directory", path, p.ref)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("decoding %s@%s: %w", path, p.ref, err)
	}

	return content, true, nil
}

// splitRepo parses "owner/repo" into its components.
func splitRepo(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("repository must be in owner/repo format: " + fullName)
	}
	return parts[0], parts[1], nil
}
