// Package github commits normalized solution files through the GitHub REST
// "contents" API, creating or updating the file at its path.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yangwenmai/solvesync/internal/model"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// Branch is the only branch written to.
	Branch = "main"
	// maxBodySize caps how much of a response body is read (1MB).
	maxBodySize = 1 << 20
)

// Client implements the repository sync engine against the contents API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (default: https://api.github.com).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout (default: 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new contents API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type contentsFile struct {
	SHA     string `json:"sha"`
	Path    string `json:"path"`
	HTMLURL string `json:"html_url"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content contentsFile `json:"content"`
	Commit  struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

// Sync creates or updates file in the configured repository. It probes the
// path for an existing sha on every call and performs exactly one write; it
// never retries.
func (c *Client) Sync(ctx context.Context, s model.Settings, file model.NormalizedFile) (*model.SyncResult, error) {
	if missing := s.Missing(); len(missing) > 0 {
		return nil, &SyncError{
			Kind:    MissingConfiguration,
			Message: "missing settings: " + strings.Join(missing, ", "),
		}
	}

	ref := c.Probe(ctx, s, file.Path)

	req := putRequest{
		Message: file.CommitMessage,
		Content: base64.StdEncoding.EncodeToString([]byte(file.Content)),
		Branch:  Branch,
	}
	if ref.Exists {
		req.SHA = ref.SHA
	}

	resp, err := c.put(ctx, s, file.Path, req)
	if err != nil {
		return nil, err
	}

	return &model.SyncResult{
		Path:       file.Path,
		Created:    !ref.Exists,
		ContentSHA: resp.Content.SHA,
		CommitSHA:  resp.Commit.SHA,
		HTMLURL:    resp.Content.HTMLURL,
	}, nil
}

// Probe reports whether path exists and its current sha. Any outcome other
// than HTTP 200, including transport failures, is reported as not existing.
func (c *Client) Probe(ctx context.Context, s model.Settings, path string) model.RemoteFileRef {
	req, err := c.newRequest(ctx, http.MethodGet, s, path, nil)
	if err != nil {
		c.logger.Warn("github probe: build request", "path", path, "error", err)
		return model.RemoteFileRef{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("github probe failed, treating as absent", "path", path, "error", err)
		return model.RemoteFileRef{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Warn("github probe returned unexpected status, treating as absent",
				"path", path, "status", resp.StatusCode)
		}
		return model.RemoteFileRef{}
	}

	var f contentsFile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&f); err != nil || f.SHA == "" {
		c.logger.Warn("github probe: unreadable body, treating as absent", "path", path, "error", err)
		return model.RemoteFileRef{}
	}
	return model.RemoteFileRef{Exists: true, SHA: f.SHA}
}

func (c *Client) put(ctx context.Context, s model.Settings, path string, body putRequest) (*putResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &SyncError{Kind: Unknown, Message: "marshal request", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPut, s, path, bytes.NewReader(payload))
	if err != nil {
		return nil, &SyncError{Kind: Unknown, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SyncError{Kind: Unknown, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &SyncError{Kind: Unknown, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, respBody)
	}

	var out putResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &out); err != nil {
			return nil, &SyncError{Kind: Unknown, Status: resp.StatusCode, Message: "unmarshal response", Err: err}
		}
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method string, s model.Settings, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.contentsURL(s, path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

func (c *Client) contentsURL(s model.Settings, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(s.RepoOwner), url.PathEscape(s.RepoName), strings.Join(segments, "/"))
}
