package regapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"regctl/internal/llsd"
	"regctl/pkg/logging"
)

const (
	contentTypeLLSD = "application/llsd+xml"
	contentTypeForm = "application/x-www-form-urlencoded"

	// submitGetCapabilities is the marker the server expects in an LLSD login.
	submitGetCapabilities = "Get Capabilities"
)

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives every request and response body, in order.
type Observer interface {
	Request(method, url string, body []byte)
	Response(url string, status int, body []byte)
}

// LoginFormat selects the body encoding of the bootstrap request.
type LoginFormat int

const (
	// LoginForm posts URL-encoded first_name, last_name and password.
	LoginForm LoginFormat = iota
	// LoginLLSD posts the credentials as an LLSD map with a submit marker.
	LoginLLSD
)

// Client talks to the registration API.
type Client struct {
	httpClient HTTPClient
	timeout    time.Duration
	userAgent  string
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithObserver registers an observer for request and response bodies.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a Client on top of httpClient.
func NewClient(httpClient HTTPClient, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{httpClient: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an *http.Client for the registration API. Grid servers
// commonly run with self-signed certificates, hence insecureSkipVerify.
func NewHTTPClient(insecureSkipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Transport: transport}
}

// FetchCapabilities posts the credentials to the bootstrap URL and returns the
// granted capabilities.
func (c *Client) FetchCapabilities(ctx context.Context, bootstrapURL string, format LoginFormat, creds Credentials) (Capabilities, error) {
	var (
		body        []byte
		contentType string
	)
	switch format {
	case LoginLLSD:
		doc, err := llsd.Marshal(map[string]any{
			"first_name": creds.FirstName,
			"last_name":  creds.LastName,
			"password":   creds.Password,
			"submit":     submitGetCapabilities,
		})
		if err != nil {
			return Capabilities{}, fmt.Errorf("encoding login: %w", err)
		}
		body, contentType = doc, contentTypeLLSD
	default:
		form := url.Values{}
		form.Set("first_name", creds.FirstName)
		form.Set("last_name", creds.LastName)
		form.Set("password", creds.Password)
		body, contentType = []byte(form.Encode()), contentTypeForm
	}

	v, err := c.roundTrip(ctx, http.MethodPost, bootstrapURL, contentType, body)
	if err != nil {
		return Capabilities{}, err
	}
	caps, err := ParseCapabilities(v)
	if err != nil {
		return Capabilities{}, &DecodeError{URL: bootstrapURL, Err: err}
	}
	logging.Debug("RegAPI", "Granted capabilities: %s", strings.Join(caps.Names(), ", "))
	return caps, nil
}

// FetchErrorCodes lists the error codes the server may report.
func (c *Client) FetchErrorCodes(ctx context.Context, capURL *url.URL) ([]ErrorCode, error) {
	v, err := c.roundTrip(ctx, http.MethodGet, capURL.String(), "", nil)
	if err != nil {
		return nil, err
	}
	codes, err := ParseErrorCodes(v)
	if err != nil {
		return nil, &DecodeError{URL: capURL.String(), Err: err}
	}
	return codes, nil
}

// FetchLastNames lists the last names new accounts may choose from.
func (c *Client) FetchLastNames(ctx context.Context, capURL *url.URL) (LastNames, error) {
	v, err := c.roundTrip(ctx, http.MethodGet, capURL.String(), "", nil)
	if err != nil {
		return nil, err
	}
	names, err := ParseLastNames(v)
	if err != nil {
		return nil, &DecodeError{URL: capURL.String(), Err: err}
	}
	return names, nil
}

// CheckName reports whether the username is available under the last name.
func (c *Client) CheckName(ctx context.Context, capURL *url.URL, req CheckNameRequest) (bool, error) {
	v, err := c.post(ctx, capURL, req.Fields())
	if err != nil {
		return false, err
	}
	return llsd.Truthy(v), nil
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, capURL *url.URL, req CreateUserRequest) (NewAccount, error) {
	v, err := c.post(ctx, capURL, req.Fields())
	if err != nil {
		return NewAccount{}, err
	}
	account, err := ParseNewAccount(v)
	if errors.Is(err, ErrRejected) {
		return NewAccount{}, fmt.Errorf("create user %s: %w", req.Username, err)
	}
	if err != nil {
		return NewAccount{}, &DecodeError{URL: capURL.String(), Err: err}
	}
	return account, nil
}

// AddToGroup adds an account to a group and reports whether it succeeded.
func (c *Client) AddToGroup(ctx context.Context, capURL *url.URL, req AddToGroupRequest) (bool, error) {
	v, err := c.post(ctx, capURL, req.Fields())
	if err != nil {
		return false, err
	}
	return llsd.Truthy(v), nil
}

func (c *Client) post(ctx context.Context, capURL *url.URL, fields map[string]any) (any, error) {
	body, err := llsd.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding request for %s: %w", capURL, err)
	}
	return c.roundTrip(ctx, http.MethodPost, capURL.String(), contentTypeLLSD, body)
}

// roundTrip performs one request and decodes the LLSD response body.
func (c *Client) roundTrip(ctx context.Context, method, target, contentType string, body []byte) (any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentTypeLLSD)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.observer != nil {
		c.observer.Request(method, target, body)
	}
	logging.Debug("RegAPI", "%s %s", method, target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if c.observer != nil {
		c.observer.Response(target, resp.StatusCode, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	v, err := llsd.Unmarshal(respBody)
	if err != nil {
		return nil, &DecodeError{URL: target, Err: err}
	}
	return v, nil
}
