package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// UserAgent is sent with every request. GitHub rejects requests without one.
const UserAgent = "gitweb-release-downloader"

// ErrHeaderFormat is returned for caller headers without a "name: value" separator.
var ErrHeaderFormat = errors.New("invalid header format, expected \"name: value\"")

// IPFamily restricts which address family connections are made over.
type IPFamily string

const (
	IPAny IPFamily = "any"
	IPv4  IPFamily = "v4"
	IPv6  IPFamily = "v6"
)

func (f IPFamily) String() string {
	if f == "" {
		return string(IPAny)
	}
	return string(f)
}

// Set implements pflag.Value.
func (f *IPFamily) Set(s string) error {
	switch IPFamily(strings.ToLower(s)) {
	case IPAny, IPv4, IPv6:
		*f = IPFamily(strings.ToLower(s))
		return nil
	}
	return fmt.Errorf("unknown ip family %q (expected any, v4 or v6)", s)
}

// Type implements pflag.Value.
func (f *IPFamily) Type() string {
	return "family"
}

// Header is a single caller-supplied request header.
type Header struct {
	Name  string
	Value string
}

func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// ParseHeaders parses "name: value" strings in order. The first colon splits
// name from value. A malformed entry is an error, it is never dropped.
func ParseHeaders(raw []string) ([]Header, error) {
	headers := make([]Header, 0, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Wrapf(ErrHeaderFormat, "%q", h)
		}
		headers = append(headers, Header{Name: name, Value: strings.TrimSpace(value)})
	}
	return headers, nil
}

// Client performs the GET requests against a forge.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	// Headers are the caller-supplied headers sent with every request, in order.
	Headers []Header
}

// New creates a Client dialing over the given address family.
func New(family IPFamily, headers []Header) *Client {
	return &Client{
		HTTP:      &http.Client{Transport: transportFor(family)},
		UserAgent: UserAgent,
		Headers:   headers,
	}
}

func transportFor(family IPFamily) http.RoundTripper {
	var network string
	switch family {
	case IPv4:
		network = "tcp4"
	case IPv6:
		network = "tcp6"
	default:
		return http.DefaultTransport
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
	return transport
}

// NewRequest creates a GET request carrying the user agent, the caller's
// headers and then extra. Headers are set on the request rather than in the
// transport so that net/http drops credentials when a redirect leaves the host.
func (c *Client) NewRequest(ctx context.Context, url string, extra http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.UserAgent)
	for _, h := range c.Headers {
		req.Header.Add(h.Name, h.Value)
	}
	for name, values := range extra {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req, nil
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: status code %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Get performs a GET request. The caller must close the body of the returned
// response. Non-2xx responses are returned as *StatusError.
func (c *Client) Get(ctx context.Context, url string, extra http.Header) (*http.Response, error) {
	req, err := c.NewRequest(ctx, url, extra)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP request failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

// GetBody performs a GET request and returns the whole response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "could not read response body")
	}
	return body, nil
}
