// Package ipreputation looks up hosting and proxy flags for a client IP
// against an ip-api compatible endpoint.
package ipreputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// Reputation is what the registration scorer needs to know about an IP.
type Reputation struct {
	Hosting bool `json:"hosting"`
	Proxy   bool `json:"proxy"`
}

// Lookuper resolves an IP's reputation. A nil Reputation with a nil error
// means the address was not eligible for lookup.
type Lookuper interface {
	Lookup(ctx context.Context, ip string) (*Reputation, error)
}

// ErrLookupFailed wraps upstream failures.
var ErrLookupFailed = errors.New("ip reputation lookup failed")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient targets baseURL (for example http://ip-api.com).
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Proxy   bool   `json:"proxy"`
	Hosting bool   `json:"hosting"`
}

// Lookup queries the endpoint. Private, loopback and unparsable addresses are
// skipped without a network call.
func (c *Client) Lookup(ctx context.Context, ip string) (*Reputation, error) {
	addr, ok := Eligible(ip)
	if !ok {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/json/%s?fields=status,message,proxy,hosting", c.baseURL, url.PathEscape(addr.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLookupFailed, err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, body.Message)
	}
	return &Reputation{Hosting: body.Hosting, Proxy: body.Proxy}, nil
}

// Eligible parses ip and reports whether it is a public unicast address.
func Eligible(ip string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return netip.Addr{}, false
	}
	return addr, true
}
