// Package radioid looks up DMR and NXDN user and repeater IDs on radioid.net.
package radioid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the radioid.net API host.
	DefaultEndpoint = "https://www.radioid.net"
	// DefaultTimeout bounds every lookup request.
	DefaultTimeout = 10 * time.Second

	keyCallsign = "callsign"
	keyID       = "id"

	noResults = "none"
)

var (
	ErrMissingArgument = errors.New("radioid: missing argument")
	ErrUnknownCommand  = errors.New("radioid: unknown command")
)

// Query describes one lookup command: where to ask, which field to keep, and how to label the reply.
type Query struct {
	Command string
	Path    string // request path with the query key, argument appended
	Key     string // field projected out of every result
	Label   string
	Usage   string
}

// Queries lists every supported command. NXDN has no repeater directory.
var Queries = []Query{
	{Command: "duid", Path: "api/dmr/user/?id=", Key: keyCallsign, Label: "Callsign for DMR User ID", Usage: "duid <DMR ID>"},
	{Command: "ducall", Path: "api/dmr/user/?callsign=", Key: keyID, Label: "DMR User ID(s) for callsign", Usage: "ducall <callsign>"},
	{Command: "drid", Path: "api/dmr/repeater/?id=", Key: keyCallsign, Label: "Callsign for DMR Repeater ID", Usage: "drid <repeater ID>"},
	{Command: "drcall", Path: "api/dmr/repeater/?callsign=", Key: keyID, Label: "DMR Repeater ID(s) for callsign", Usage: "drcall <callsign>"},
	{Command: "nuid", Path: "api/nxdn/user/?id=", Key: keyCallsign, Label: "Callsign for NXDN User ID", Usage: "nuid <NXDN ID>"},
	{Command: "nucall", Path: "api/nxdn/user/?callsign=", Key: keyID, Label: "NXDN User ID(s) for callsign", Usage: "nucall <callsign>"},
}

// Find returns the Query for a command name.
func Find(command string) (Query, bool) {
	for _, q := range Queries {
		if q.Command == command {
			return q, true
		}
	}
	return Query{}, false
}

// Client issues lookups against one radioid endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout replaces the HTTP client with one using timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.endpoint = strings.TrimSuffix(c.endpoint, "/")
	return c
}

// URL returns the request URL for q with arg substituted.
func (c *Client) URL(q Query, arg string) string {
	return c.endpoint + "/" + q.Path + url.QueryEscape(arg)
}

// Lookup runs command with arg and returns the reply line.
// A non-200 status is reported inside the reply; transport and decode failures are returned as errors.
func (c *Client) Lookup(ctx context.Context, command, arg string) (string, error) {
	q, ok := Find(command)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", ErrMissingArgument
	}
	values, err := c.fetch(ctx, q, arg)
	if err != nil {
		return "", err
	}
	return q.Label + " " + arg + ": " + values, nil
}

func (c *Client) fetch(ctx context.Context, q Query, arg string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(q, arg), nil)
	if err != nil {
		return "", fmt.Errorf("radioid: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("radioid: %s: %w", q.Command, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "Status code " + strconv.Itoa(resp.StatusCode), nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("radioid: read body: %w", err)
	}
	values, err := project(data, q.Key)
	if err != nil {
		return "", err
	}
	return Render(values), nil
}

type response struct {
	Results []map[string]any `json:"results"`
}

// project pulls key out of every element of the results array.
func project(data []byte, key string) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r response
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("radioid: decode response: %w", err)
	}
	if r.Results == nil {
		return nil, errors.New("radioid: response has no results")
	}
	out := make([]string, 0, len(r.Results))
	for i, sub := range r.Results {
		v, ok := sub[key]
		if !ok {
			return nil, fmt.Errorf("radioid: result %d has no %q", i, key)
		}
		out = append(out, valueString(v))
	}
	return out, nil
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Render joins projected values with ", "; no values renders as "none".
func Render(values []string) string {
	if len(values) == 0 {
		return noResults
	}
	return strings.Join(values, ", ")
}
