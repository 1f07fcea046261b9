// Package store implements the artifact-store collaborator: a thin client for
// the GitHub Actions artifacts API plus commit-history listing for the same
// repository. All calls are authenticated with the access token supplied at
// construction.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultBaseURL  = "https://api.github.com"
	defaultPageSize = 30

	// maxCommitPage is the largest per_page value the commits API honors;
	// anything bigger is silently clamped.
	maxCommitPage = 100

	acceptHeader  = "application/vnd.github+json"
	apiVersion    = "2022-11-28"
	versionHeader = "X-GitHub-Api-Version"
)

// Client queries and downloads CI artifacts for a single repository.
type Client struct {
	baseURL  string
	repo     string
	token    string
	pageSize int
	httpc    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests and GHE deployments).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpc = h
	}
}

// WithPageSize sets how many records a single listing page may hold.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a store client for repo ("owner/name") using the given
// access token.
func NewClient(repo, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		repo:     repo,
		token:    token,
		pageSize: defaultPageSize,
		httpc:    http.DefaultClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ListArtifacts returns the first page of artifact records whose name matches
// exactly. Only the first page is consulted: an artifact absent from page one
// is treated as nonexistent. An empty slice means "not found" and is not an
// error; errors indicate transport or store failures.
func (c *Client) ListArtifacts(ctx context.Context, name string) ([]Artifact, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/actions/artifacts?name=%s&per_page=%d&page=1",
		c.baseURL, c.repo, url.QueryEscape(name), c.pageSize)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page artifactPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("store: decode artifact listing for %s: %w", name, err)
	}
	return page.Artifacts, nil
}

// DownloadArtifact streams the zip bundle for the given artifact ID into w.
func (c *Client) DownloadArtifact(ctx context.Context, id int64, w io.Writer) error {
	endpoint := fmt.Sprintf("%s/repos/%s/actions/artifacts/%d/zip", c.baseURL, c.repo, id)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("store: download artifact %d: %w", id, err)
	}
	return nil
}

// ListAncestors returns up to limit commit hashes strictly older than hash,
// ordered newest first. The starting hash itself is never included. The
// listing is paged so limits at or above the per_page maximum still yield the
// full count.
func (c *Client) ListAncestors(ctx context.Context, hash string, limit int) ([]string, error) {
	// Ask for one extra record since the listing starts at hash itself.
	perPage := limit + 1
	if perPage > maxCommitPage {
		perPage = maxCommitPage
	}

	ancestors := make([]string, 0, limit)
	for page := 1; len(ancestors) < limit; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/commits?sha=%s&per_page=%d&page=%d",
			c.baseURL, c.repo, url.QueryEscape(hash), perPage, page)

		resp, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var commits []commitRecord
		err = json.NewDecoder(resp.Body).Decode(&commits)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("store: decode commit listing for %s: %w", hash, err)
		}

		for _, commit := range commits {
			if commit.SHA == hash {
				continue
			}
			ancestors = append(ancestors, commit.SHA)
			if len(ancestors) == limit {
				break
			}
		}

		// A short page means the history is exhausted.
		if len(commits) < perPage {
			break
		}
	}
	return ancestors, nil
}

// get issues an authenticated GET and fails on any non-2xx status.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("store: build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set(versionHeader, apiVersion)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: GET %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("store: GET %s: unexpected status %s: %s",
			endpoint, resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
