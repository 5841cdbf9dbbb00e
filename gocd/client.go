/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package gocd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/logging"
)

// YAMLPluginID is the plugin id of the GoCD YAML config-repo plugin.
const YAMLPluginID = "yaml.config.plugin"

const (
	acceptV1       = "application/vnd.go.cd.v1+json"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

// Client talks to the GoCD server API.
type Client struct {
	baseURL    *url.URL
	username   string
	password   string
	token      string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBasicAuth authenticates requests with a username and password.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithToken authenticates requests with a personal access token.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient returns a client for the server at baseURL, e.g.
// "https://gocd.example.com". A trailing "/go" is optional.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("GoCD server URL is required")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap("parse GoCD server URL", logging.RedactURL(baseURL), err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("GoCD server URL %s must use http or https", logging.RedactURL(baseURL))
	}
	u.Path = strings.TrimSuffix(u.Path, "/go")

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GoCD %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GoCD %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// VersionError reports a server version outside the supported range.
type VersionError struct {
	Server     string
	Constraint string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("GoCD server version %s does not satisfy %q", e.Server, e.Constraint)
}

type versionResponse struct {
	Version     string `json:"version"`
	FullVersion string `json:"full_version"`
}

// Version returns the server version.
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	var resp versionResponse
	if err := c.do(ctx, http.MethodGet, "/go/api/version", nil, "", nil, &resp); err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(resp.Version)
	if err != nil {
		return nil, errors.Wrap("parse GoCD server version", resp.Version, err)
	}
	logging.DebugContext(ctx, "GoCD server version %s (%s)", v, resp.FullVersion)
	return v, nil
}

// CheckVersion returns a *VersionError unless the server version satisfies
// constraint (a Masterminds/semver range such as ">= 20.8.0").
func (c *Client) CheckVersion(ctx context.Context, constraint string) error {
	want, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrap("parse version constraint", constraint, err)
	}
	got, err := c.Version(ctx)
	if err != nil {
		return err
	}
	if !want.Check(got) {
		return &VersionError{Server: got.String(), Constraint: constraint}
	}
	return nil
}

type encryptRequest struct {
	Value string `json:"value"`
}

type encryptResponse struct {
	EncryptedValue string `json:"encrypted_value"`
}

// Encrypt asks the server to encrypt plain for use as a secure variable.
func (c *Client) Encrypt(ctx context.Context, plain string) (string, error) {
	body, err := json.Marshal(encryptRequest{Value: plain})
	if err != nil {
		return "", err
	}
	var resp encryptResponse
	if err := c.do(ctx, http.MethodPost, "/go/api/admin/encrypt", nil, "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if resp.EncryptedValue == "" {
		return "", fmt.Errorf("GoCD returned an empty encrypted value")
	}
	return resp.EncryptedValue, nil
}

// PreflightResult is the server's verdict on a set of config-repo files.
type PreflightResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Preflight uploads set to the YAML plugin preflight endpoint. repoID, when
// set, checks the files as a replacement for that config repo's content.
func (c *Client) Preflight(ctx context.Context, set ConfigSet, repoID string) (*PreflightResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range set.Files() {
		part, err := w.CreateFormFile("files[]", name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(set[name]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	query := url.Values{"pluginId": {YAMLPluginID}}
	if repoID != "" {
		query.Set("repoId", repoID)
	}

	var result PreflightResult
	if err := c.do(ctx, http.MethodPost, "/go/api/admin/config_repo_ops/preflight", query, w.FormDataContentType(), &buf, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap("create GoCD request", path, err)
	}
	req.Header.Set("Accept", acceptV1)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("X-GoCD-Confirm", "true")
	}
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap("call GoCD API", method+" "+path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap("decode GoCD response", method+" "+path, err)
	}
	return nil
}

// errorMessage extracts the "message" field GoCD puts in error bodies, or
// falls back to the raw body.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(data))
}
