//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evolution-x/site-metadata/internal/config"
	"github.com/evolution-x/site-metadata/internal/domain/ota"
)

const (
	// branchesPerPage is the largest page size the branches endpoint accepts.
	branchesPerPage = 100
	// maxManifestSize bounds JSON documents read from the remote.
	maxManifestSize = 8 << 20
	// maxImageSize bounds device images downloaded from the image host.
	maxImageSize = 32 << 20
)

var (
	// ErrBadHTTPStatus is returned for any response other than 200 OK.
	ErrBadHTTPStatus = errors.New("unexpected http status")
	// ErrNoBranches is returned when the repository lists no branches.
	ErrNoBranches = errors.New("no branches found")
	// errTokenRequired is returned when the access credential is empty.
	errTokenRequired = errors.New("access token must be provided")
	// errConfigRequired is returned when the client is built without settings.
	errConfigRequired = errors.New("configuration must be provided")
	// errTooLarge is returned when a body exceeds its size bound.
	errTooLarge = errors.New("response body too large")
)

// Client talks to the OTA repository (REST API and raw content) and to the image host.
type Client struct {
	// httpClient performs every request.
	httpClient *http.Client
	// cfg supplies base URLs, repository and builds directory.
	cfg *config.Config
	// token authenticates requests to GitHub hosts.
	token string
	// userAgent is sent with every request.
	userAgent string

	// callTimeout bounds a single request, including reading its body.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a timeout for every request.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient returns a client for the repository described by cfg.
// The token is required for repository requests; Anonymous builds a client for
// public raw content only.
func NewClient(cfg *config.Config, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errTokenRequired
	}

	return newClient(cfg, token, opts...)
}

// Anonymous returns a client that sends no credential.
func Anonymous(cfg *config.Config, opts ...Option) (*Client, error) {
	return newClient(cfg, "", opts...)
}

func newClient(cfg *config.Config, token string, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}

	c := &Client{
		httpClient:  http.DefaultClient,
		cfg:         cfg,
		token:       token,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// branchResponse is one element of the branches endpoint.
type branchResponse struct {
	Name string `json:"name"`
}

// contentResponse is one element of a contents directory listing.
type contentResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListBranches returns every branch of the repository in API order.
func (c *Client) ListBranches(ctx context.Context) ([]string, error) {
	var branches []string

	for page := 1; ; page++ {
		query := url.Values{
			"per_page": {strconv.Itoa(branchesPerPage)},
			"page":     {strconv.Itoa(page)},
		}

		var batch []branchResponse
		if err := c.getJSON(ctx, c.apiURL("branches", query), true, &batch); err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}

		for _, b := range batch {
			if b.Name != "" {
				branches = append(branches, b.Name)
			}
		}

		if len(batch) < branchesPerPage {
			break
		}
	}

	if len(branches) == 0 {
		return nil, ErrNoBranches
	}

	return branches, nil
}

// ListBuilds returns the devices with a manifest in the builds directory of branch.
func (c *Client) ListBuilds(ctx context.Context, branch string) ([]string, error) {
	var listing []contentResponse

	endpoint := c.apiURL("contents/"+url.PathEscape(c.cfg.BuildsDir), url.Values{"ref": {branch}})
	if err := c.getJSON(ctx, endpoint, true, &listing); err != nil {
		return nil, fmt.Errorf("list builds on %s: %w", branch, err)
	}

	devices := make([]string, 0, len(listing))

	for _, item := range listing {
		if item.Type != "" && item.Type != "file" {
			continue
		}

		if device, ok := ota.DeviceFromBuildFile(item.Name); ok {
			devices = append(devices, device)
		}
	}

	return devices, nil
}

// FetchManifest downloads and decodes the manifest of device on branch.
func (c *Client) FetchManifest(ctx context.Context, branch, device string) (*ota.DeviceManifest, error) {
	var manifest ota.DeviceManifest

	if err := c.getJSON(ctx, c.ManifestURL(branch, device), true, &manifest); err != nil {
		return nil, fmt.Errorf("fetch manifest %s on %s: %w", device, branch, err)
	}

	return &manifest, nil
}

// ManifestURL is the raw content URL of a device manifest.
func (c *Client) ManifestURL(branch, device string) string {
	return fmt.Sprintf("%s/%s/refs/heads/%s/%s/%s%s",
		c.cfg.RawURL, c.cfg.Repository, branch, c.cfg.BuildsDir, url.PathEscape(device), ota.BuildsExt)
}

// ProbeImage reports whether the image host serves rawURL, without downloading it.
func (c *Client) ProbeImage(ctx context.Context, rawURL string) (bool, error) {
	resp, cancel, err := c.do(ctx, http.MethodHead, rawURL, false)
	if err != nil {
		return false, err
	}

	defer cancel()

	_ = resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// DownloadImage returns the body served at rawURL.
func (c *Client) DownloadImage(ctx context.Context, rawURL string) ([]byte, error) {
	resp, cancel, err := c.do(ctx, http.MethodGet, rawURL, false)
	if err != nil {
		return nil, err
	}

	defer cancel()

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", rawURL, resp.Status, ErrBadHTTPStatus)
	}

	return readLimited(resp.Body, maxImageSize)
}

// getJSON performs a GET and decodes a 200 response into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, authenticated bool, v any) error {
	resp, cancel, err := c.do(ctx, http.MethodGet, rawURL, authenticated)
	if err != nil {
		return err
	}

	defer cancel()

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", rawURL, resp.Status, ErrBadHTTPStatus)
	}

	data, err := readLimited(resp.Body, maxManifestSize)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}

	return nil
}

// do sends a request. The returned cancel func must be called once the body is consumed.
func (c *Client) do(
	ctx context.Context,
	method, rawURL string,
	authenticated bool,
) (*http.Response, context.CancelFunc, error) {
	callCtx, cancel := c.callContext(ctx)

	req, err := http.NewRequestWithContext(callCtx, method, rawURL, http.NoBody)
	if err != nil {
		cancel()

		return nil, nil, err
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if authenticated && c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()

		return nil, nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}

	return resp, cancel, nil
}

// apiURL builds a repository endpoint URL.
func (c *Client) apiURL(endpoint string, query url.Values) string {
	u := fmt.Sprintf("%s/repos/%s/%s", c.cfg.APIURL, c.cfg.Repository, endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return u
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, errTooLarge
	}

	return data, nil
}
