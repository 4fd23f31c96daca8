package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"intersect-backend/internal/models"
)

var (
	ErrNoRepository = errors.New("organization has no repository configured")
	ErrNotFound     = errors.New("github resource not found")
)

// Client is a thin GitHub REST v3 client for the handful of read paths the
// dashboard needs. An empty token works for public repositories at a reduced
// rate limit.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		token:   os.Getenv("GITHUB_TOKEN"),
		baseURL: "https://api.github.com",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SplitRepoURL extracts owner and repo from an https://github.com/owner/repo URL.
func SplitRepoURL(repoURL string) (owner, repo string, err error) {
	if repoURL == "" {
		return "", "", ErrNoRepository
	}

	parts := strings.Split(strings.Trim(strings.TrimSuffix(repoURL, ".git"), "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid repository URL %q", repoURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github responded %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type commitPayload struct {
	SHA    string `json:"sha"`
	URL    string `json:"html_url"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

func (p commitPayload) model() models.Commit {
	c := models.Commit{
		SHA:     p.SHA,
		Message: p.Commit.Message,
		Author:  p.Commit.Author.Name,
		URL:     p.URL,
	}
	if p.Author != nil {
		c.Author = p.Author.Login
	}
	if t, err := time.Parse(time.RFC3339, p.Commit.Author.Date); err == nil {
		c.Date = t
	}
	return c
}

// RepoCommits lists commits on the default branch within [since, until).
func (c *Client) RepoCommits(ctx context.Context, repoURL string, since, until time.Time) ([]models.Commit, error) {
	owner, repo, err := SplitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}
	if !until.IsZero() {
		query.Set("until", until.UTC().Format(time.RFC3339))
	}

	var payload []commitPayload
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/commits", owner, repo), query, &payload); err != nil {
		return nil, err
	}

	commits := make([]models.Commit, 0, len(payload))
	for _, p := range payload {
		commits = append(commits, p.model())
	}
	return commits, nil
}

// UserCommits lists commits authored by the given GitHub login.
func (c *Client) UserCommits(ctx context.Context, repoURL, githubID string) ([]models.Commit, error) {
	owner, repo, err := SplitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	query := url.Values{"author": {githubID}}

	var payload []commitPayload
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/commits", owner, repo), query, &payload); err != nil {
		return nil, err
	}

	commits := make([]models.Commit, 0, len(payload))
	for _, p := range payload {
		commits = append(commits, p.model())
	}
	return commits, nil
}

// Commit fetches a single commit by SHA.
func (c *Client) Commit(ctx context.Context, repoURL, sha string) (*models.Commit, error) {
	owner, repo, err := SplitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var payload commitPayload
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, sha), nil, &payload); err != nil {
		return nil, err
	}

	commit := payload.model()
	return &commit, nil
}

type pullPayload struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	State     string `json:"state"`
	URL       string `json:"html_url"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

func (p pullPayload) model() models.PullRequest {
	pr := models.PullRequest{
		Number: p.Number,
		Title:  p.Title,
		Body:   p.Body,
		State:  p.State,
		Author: p.User.Login,
		URL:    p.URL,
	}
	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		pr.CreatedAt = t
	}
	return pr
}

// UserPulls lists pull requests opened by the given GitHub login.
func (c *Client) UserPulls(ctx context.Context, repoURL, githubID string) ([]models.PullRequest, error) {
	owner, repo, err := SplitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	query := url.Values{"state": {"all"}, "per_page": {"100"}}

	var payload []pullPayload
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), query, &payload); err != nil {
		return nil, err
	}

	pulls := make([]models.PullRequest, 0, len(payload))
	for _, p := range payload {
		if githubID != "" && p.User.Login != githubID {
			continue
		}
		pulls = append(pulls, p.model())
	}
	return pulls, nil
}

// Pull fetches a single pull request by number.
func (c *Client) Pull(ctx context.Context, repoURL string, number int) (*models.PullRequest, error) {
	owner, repo, err := SplitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var payload pullPayload
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), nil, &payload); err != nil {
		return nil, err
	}

	pull := payload.model()
	return &pull, nil
}
