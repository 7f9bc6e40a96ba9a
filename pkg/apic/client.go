/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package apic is a small client for the fabric controller's REST API.
package apic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

const (
	defaultTimeout = 30 * time.Second
	defaultPod     = "1"
	cookieName     = "APIC-cookie"

	loginPath  = "/api/aaaLogin.json"
	logoutPath = "/api/aaaLogout.json"
	commitPath = "/api/mo/uni.json"
)

// Config holds controller connection settings.
type Config struct {
	Address            string          `json:"address"`
	Username           string          `json:"username"`
	Password           string          `json:"password"`
	InsecureSkipVerify bool            `json:"insecure_skip_verify"`
	Timeout            models.Duration `json:"timeout"`
	Pod                string          `json:"pod"`
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = models.Duration(defaultTimeout)
	}

	if c.Pod == "" {
		c.Pod = defaultPod
	}
}

// Validate checks that the controller can be reached with these settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return ErrAddressRequired
	}

	if c.Username == "" {
		return ErrUsernameRequired
	}

	if c.Password == "" {
		return ErrPasswordRequired
	}

	if c.Pod != "" && (strings.Trim(c.Pod, "0123456789") != "" || strings.Trim(c.Pod, "0") == "") {
		return fmt.Errorf("%w: %q", ErrInvalidPod, c.Pod)
	}

	return nil
}

// BaseURL returns the controller URL without a trailing slash. Bare host
// names are assumed to speak HTTPS.
func (c *Config) BaseURL() string {
	addr := strings.TrimRight(strings.TrimSpace(c.Address), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "https://" + addr
	}

	return addr
}

// Client talks to one controller. Reads may run concurrently; commits are
// serialized.
type Client struct {
	config  Config
	baseURL string
	http    *http.Client
	logger  logger.Logger

	mu    sync.RWMutex
	token string

	commitMu sync.Mutex
}

var _ Directory = (*Client)(nil)

// NewClient validates cfg and returns a client that still needs Login.
func NewClient(cfg *Config, log logger.Logger) (*Client, error) {
	c := *cfg
	c.ApplyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:  c,
		baseURL: c.BaseURL(),
		http: &http.Client{
			Timeout: time.Duration(c.Timeout),
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // G402: lab controllers commonly use self-signed certificates
				},
			},
		},
		logger: log.WithComponent("apic"),
	}, nil
}

// Pod returns the fabric pod the client was configured for.
func (c *Client) Pod() string {
	return c.config.Pod
}

// Login opens a session and stores its token for later requests.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]interface{}{
		"aaaUser": map[string]interface{}{
			"attributes": map[string]string{
				"name": c.config.Username,
				"pwd":  c.config.Password,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, status, err := c.send(ctx, http.MethodPost, loginPath, body, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("%w: %w", ErrLoginFailed, responseError(resp, status))
	}

	token := gjson.GetBytes(resp, "imdata.0.aaaLogin.attributes.token").String()
	if token == "" {
		return fmt.Errorf("%w: %w", ErrLoginFailed, responseError(resp, status))
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.Info().Str("controller", c.baseURL).Str("user", c.config.Username).Msg("Logged in to controller")

	return nil
}

// Logout closes the session. It is a no-op when not logged in.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	loggedIn := c.token != ""
	c.mu.RUnlock()

	if !loggedIn {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"aaaUser": map[string]interface{}{
			"attributes": map[string]string{"name": c.config.Username},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode logout request: %w", err)
	}

	resp, status, err := c.send(ctx, http.MethodPost, logoutPath, body, true)

	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("logout failed: %w", responseError(resp, status))
	}

	c.logger.Debug().Msg("Logged out of controller")

	return nil
}

// QueryClass returns every object of class, including its subtree when
// requested.
func (c *Client) QueryClass(ctx context.Context, class string, subtree Subtree) ([]*Object, error) {
	path := "/api/class/" + class + ".json"
	if subtree != SubtreeNone {
		path += "?rsp-subtree=" + string(subtree)
	}

	objects, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", class, err)
	}

	c.logger.Debug().Str("class", class).Int("count", len(objects)).Msg("Class query complete")

	return objects, nil
}

// LookupDN fetches a single object by DN.
func (c *Client) LookupDN(ctx context.Context, dn string) (*Object, bool, error) {
	objects, err := c.get(ctx, "/api/mo/"+dn+".json")
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", dn, err)
	}

	if len(objects) == 0 {
		return nil, false, nil
	}

	return objects[0], true, nil
}

// Commit posts the whole batch as one polUni document.
func (c *Client) Commit(ctx context.Context, req *ConfigRequest) error {
	payload, err := req.Payload()
	if err != nil {
		return err
	}

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	resp, status, err := c.send(ctx, http.MethodPost, commitPath, payload, true)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommitRejected, err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("%w: %w", ErrCommitRejected, responseError(resp, status))
	}

	// a 200 can still carry an error entry
	if _, err := decodeImdata(resp, status); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitRejected, err)
	}

	c.logger.Info().Int("intents", req.Len()).Msg("Committed config request")

	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]*Object, error) {
	resp, status, err := c.send(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, responseError(resp, status)
	}

	return decodeImdata(resp, status)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, authenticated bool) ([]byte, int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()

		if token == "" {
			return nil, 0, ErrNotLoggedIn
		}

		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	return data, resp.StatusCode, nil
}

// responseError extracts the controller error from a failed response, or
// falls back to the bare HTTP status.
func responseError(body []byte, status int) error {
	var apiErr *APIError

	if _, err := decodeImdata(body, status); errors.As(err, &apiErr) {
		return apiErr
	}

	return &APIError{StatusCode: status}
}
