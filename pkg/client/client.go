// Package client implements auth.Service against a remote verifier over HTTP.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/session"
)

const (
	mimeCBOR       = "application/cbor"
	maxBodyBytes   = 1 << 16
	defaultTimeout = 30 * time.Second
)

// Client talks CBOR to a verifier server.
type Client struct {
	base string
	http *http.Client
}

var _ auth.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New returns a Client for the server at base, e.g. "http://localhost:8080".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register implements auth.Service.
func (c *Client) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.RegisterResponse, error) {
	var resp auth.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/v1/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BeginChallenge implements auth.Service.
func (c *Client) BeginChallenge(ctx context.Context, req *auth.ChallengeRequest) (*auth.ChallengeResponse, error) {
	var resp auth.ChallengeResponse
	if err := c.do(ctx, http.MethodPost, "/v1/challenge", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyResponse implements auth.Service.
func (c *Client) VerifyResponse(ctx context.Context, req *auth.VerifyRequest) (*auth.VerifyResponse, error) {
	var resp auth.VerifyResponse
	if err := c.do(ctx, http.MethodPost, "/v1/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Parameters fetches and validates the group of the server.
func (c *Client) Parameters(ctx context.Context) (*group.Parameters, error) {
	var resp auth.ParametersResponse
	if err := c.do(ctx, http.MethodGet, "/v1/params", nil, &resp); err != nil {
		return nil, err
	}
	return auth.ParametersFromResponse(&resp)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := cbor.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Accept", mimeCBOR)
	if in != nil {
		req.Header.Set("Content-Type", mimeCBOR)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("client: reading %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(path, resp.StatusCode, data)
	}
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decoding %s: %w", path, err)
	}
	return nil
}

// statusError turns a failed response back into the error the verifier returned,
// so that callers can use errors.Is with session.ErrNotFound and session.ErrRejected.
func statusError(path string, code int, data []byte) error {
	var generic auth.GenericError
	msg := http.StatusText(code)
	if err := cbor.Unmarshal(data, &generic); err == nil && generic.Error != "" {
		msg = generic.Error
	}

	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("client: %s: %w (%s)", path, session.ErrNotFound, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("client: %s: %w (%s)", path, session.ErrRejected, msg)
	default:
		return fmt.Errorf("client: %s: %d %s", path, code, msg)
	}
}
