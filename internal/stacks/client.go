package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/five82/crown/internal/clarity"
)

// ReadOnlyCaller defines the interface for evaluating read-only contract
// functions. This interface is implemented by *Client and can be used for testing.
type ReadOnlyCaller interface {
	CallReadOnly(ctx context.Context, call ReadOnlyCall) (clarity.Value, error)
}

// Ensure Client implements ReadOnlyCaller at compile time.
var _ ReadOnlyCaller = (*Client)(nil)

// Client talks to a Stacks node (or Hiro API) over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIURL    = "https://api.mainnet.hiro.so"
	defaultUserAgent = "crown/0.1"
	requestTimeout   = 10 * time.Second
)

var tracer = otel.Tracer("github.com/five82/crown/internal/stacks")

// NewClient builds a Client for the given node base URL.
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// ReadOnlyCall names a read-only function and its arguments.
type ReadOnlyCall struct {
	Contract  clarity.Principal
	Function  string
	Sender    string
	Arguments []clarity.Value
}

type readOnlyRequest struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"`
}

// ReadOnlyResponse mirrors the call-read endpoint payload.
type ReadOnlyResponse struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result"`
	Cause  string `json:"cause"`
}

// CallReadOnly evaluates a read-only function against the node's current
// confirmed state and decodes the Clarity result.
func (c *Client) CallReadOnly(ctx context.Context, call ReadOnlyCall) (clarity.Value, error) {
	if c == nil {
		return clarity.Value{}, fmt.Errorf("client is nil")
	}
	if call.Contract.Contract == "" {
		return clarity.Value{}, fmt.Errorf("contract name required")
	}
	if strings.TrimSpace(call.Function) == "" {
		return clarity.Value{}, fmt.Errorf("function name required")
	}

	ctx, span := tracer.Start(ctx, "stacks.CallReadOnly")
	defer span.End()
	span.SetAttributes(
		attribute.String("stacks.contract", call.Contract.String()),
		attribute.String("stacks.function", call.Function),
	)

	body := readOnlyRequest{Sender: call.Sender, Arguments: make([]string, 0, len(call.Arguments))}
	if body.Sender == "" {
		body.Sender = call.Contract.Address()
	}
	for i, arg := range call.Arguments {
		encoded, err := clarity.EncodeHex(arg)
		if err != nil {
			return clarity.Value{}, fmt.Errorf("encode argument %d: %w", i, err)
		}
		body.Arguments = append(body.Arguments, encoded)
	}

	rel := &url.URL{Path: path.Join("/v2/contracts/call-read",
		call.Contract.Address(), call.Contract.Contract, call.Function)}

	var payload ReadOnlyResponse
	if err := c.doURL(ctx, http.MethodPost, rel, body, &payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return clarity.Value{}, err
	}
	if !payload.Okay {
		err := fmt.Errorf("read-only call %s failed: %s", call.Function, strings.TrimSpace(payload.Cause))
		span.SetStatus(codes.Error, err.Error())
		return clarity.Value{}, err
	}
	value, err := clarity.DecodeHex(payload.Result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return clarity.Value{}, fmt.Errorf("decode result: %w", err)
	}
	return value, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, in, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
