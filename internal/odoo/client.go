// Package odoo is a small XML-RPC client for the Odoo external API.
//
// The server exposes two services: /xmlrpc/2/common for identity calls
// (version, authenticate) and /xmlrpc/2/object for model calls through
// execute_kw. Every call runs under the caller's context plus a per-call
// timeout, so a hung backend cannot hang the whole export.
package odoo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
)

const (
	commonPath = "/xmlrpc/2/common"
	objectPath = "/xmlrpc/2/object"

	defaultCallTimeout = 2 * time.Minute
)

// Client holds the transport settings for one Odoo server.
type Client struct {
	baseURL     string
	transport   http.RoundTripper
	callTimeout time.Duration
}

type Option func(*Client)

// WithCallTimeout bounds every remote call. Zero or negative keeps the default.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithTransport replaces the HTTP transport, mostly for tests and proxies.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		transport:   http.DefaultTransport,
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) common() endpoint { return endpoint{url: c.baseURL + commonPath, client: c} }
func (c *Client) object() endpoint { return endpoint{url: c.baseURL + objectPath, client: c} }

// Version calls version() on the identity service. It needs no credentials and
// is used as a connectivity check.
func (c *Client) Version(ctx context.Context) (map[string]interface{}, error) {
	var reply interface{}
	if err := c.common().call(ctx, "version", []interface{}{}, &reply); err != nil {
		return nil, err
	}
	info, ok := reply.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected version reply %T", reply)
	}
	return info, nil
}

// endpoint is one XML-RPC service on the server
type endpoint struct {
	url    string
	client *Client
}

// call performs one XML-RPC method call. args are sent as positional params.
func (e endpoint) call(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	if e.client.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.client.callTimeout)
		defer cancel()
	}

	rpc, err := xmlrpc.NewClient(e.url, contextTransport{ctx: ctx, base: e.client.transport})
	if err != nil {
		return fmt.Errorf("create xml-rpc client for %s: %w", e.url, err)
	}
	defer rpc.Close()

	if err := rpc.Call(method, args, reply); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", e.url, method, ctxErr)
		}
		return fmt.Errorf("%s %s: %w", e.url, method, err)
	}
	return nil
}

// contextTransport binds every outgoing request to ctx so cancellation and
// deadlines reach the socket.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
