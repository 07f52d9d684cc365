package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrNoSession means the bridge has no connected account.
	ErrNoSession = errors.New("wallet: no connected account")
	// ErrDeclined means the user refused the connect request.
	ErrDeclined = errors.New("wallet: connection declined")
	// ErrCancelled means the user cancelled the signing prompt.
	ErrCancelled = errors.New("wallet: signing cancelled")
)

// PostConditionMode controls whether asset transfers not covered by a post
// condition abort the transaction.
type PostConditionMode string

const (
	PostConditionDeny  PostConditionMode = "deny"
	PostConditionAllow PostConditionMode = "allow"
)

// PostCondition limits what the payer may send when the call executes.
type PostCondition struct {
	Type      string `json:"type"`      // "stx"
	Principal string `json:"principal"` // sender the condition applies to
	Condition string `json:"condition"` // "eq", "lte", "lt", "gte", "gt"
	Amount    string `json:"amount"`    // micro-units, decimal
}

// ContractCall is an unsigned contract-call transaction for the bridge to
// sign and broadcast.
type ContractCall struct {
	ContractAddress   string            `json:"contractAddress"`
	ContractName      string            `json:"contractName"`
	FunctionName      string            `json:"functionName"`
	FunctionArgs      []string          `json:"functionArgs"`
	Network           string            `json:"network"`
	AnchorMode        string            `json:"anchorMode"`
	PostConditionMode PostConditionMode `json:"postConditionMode"`
	PostConditions    []PostCondition   `json:"postConditions"`
}

type accountResponse struct {
	Address string `json:"address"`
}

type contractCallResponse struct {
	TxID  string `json:"txid"`
	Error string `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Bridge talks to a local signer bridge that owns keys and the approval UI.
type Bridge struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBridgeURL = "http://127.0.0.1:7777"
	defaultUserAgent = "crown/0.1"
	// Signing waits on a human, so the timeout is generous.
	requestTimeout = 5 * time.Minute
)

var tracer = otel.Tracer("github.com/five82/crown/internal/wallet")

// NewBridge builds a Bridge for the given base URL.
func NewBridge(bridgeURL string) (*Bridge, error) {
	base, err := parseBaseURL(bridgeURL)
	if err != nil {
		return nil, err
	}
	return &Bridge{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// Account returns the currently connected account, or ErrNoSession.
func (b *Bridge) Account(ctx context.Context) (string, error) {
	var payload accountResponse
	status, err := b.do(ctx, http.MethodGet, "/v1/session", nil, &payload)
	if status == http.StatusUnauthorized {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Address) == "" {
		return "", ErrNoSession
	}
	return strings.TrimSpace(payload.Address), nil
}

// Connect opens the bridge's approval flow and returns the approved account.
func (b *Bridge) Connect(ctx context.Context, appName string) (string, error) {
	ctx, span := tracer.Start(ctx, "wallet.Connect")
	defer span.End()

	var payload accountResponse
	status, err := b.do(ctx, http.MethodPost, "/v1/connect", map[string]string{"appName": appName}, &payload)
	if status == http.StatusForbidden {
		span.SetStatus(codes.Error, ErrDeclined.Error())
		return "", ErrDeclined
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if strings.TrimSpace(payload.Address) == "" {
		return "", fmt.Errorf("connect returned no address")
	}
	return strings.TrimSpace(payload.Address), nil
}

// Disconnect ends the bridge session.
func (b *Bridge) Disconnect(ctx context.Context) error {
	_, err := b.do(ctx, http.MethodPost, "/v1/disconnect", struct{}{}, nil)
	return err
}

// ContractCall asks the bridge to sign and broadcast call. It returns the
// transaction id once the transaction is accepted for broadcast; it does not
// wait for confirmation.
func (b *Bridge) ContractCall(ctx context.Context, call ContractCall) (string, error) {
	ctx, span := tracer.Start(ctx, "wallet.ContractCall")
	defer span.End()
	span.SetAttributes(
		attribute.String("stacks.contract", call.ContractAddress+"."+call.ContractName),
		attribute.String("stacks.function", call.FunctionName),
		attribute.String("stacks.post_condition_mode", string(call.PostConditionMode)),
	)

	var payload contractCallResponse
	status, err := b.do(ctx, http.MethodPost, "/v1/contract-call", call, &payload)
	if status == http.StatusConflict || strings.EqualFold(payload.Error, "cancelled") {
		span.SetStatus(codes.Error, ErrCancelled.Error())
		return "", ErrCancelled
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if strings.TrimSpace(payload.TxID) == "" {
		return "", fmt.Errorf("bridge accepted call without txid")
	}
	span.SetAttributes(attribute.String("stacks.txid", payload.TxID))
	return payload.TxID, nil
}

// do performs one request. It returns the HTTP status (0 when no response
// arrived) alongside any error.
func (b *Bridge) do(ctx context.Context, method, path string, in, dest any) (int, error) {
	if b == nil {
		return 0, fmt.Errorf("bridge is nil")
	}
	reqURL := b.baseURL.ResolveReference(&url.URL{Path: path})

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", b.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		if dest != nil {
			_ = json.Unmarshal(raw, dest)
		}
		if msg := strings.TrimSpace(apiErr.Error); msg != "" {
			return resp.StatusCode, fmt.Errorf("bridge %s returned status %d: %s", path, resp.StatusCode, msg)
		}
		return resp.StatusCode, fmt.Errorf("bridge %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func parseBaseURL(bridgeURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(bridgeURL)
	if trimmed == "" {
		trimmed = defaultBridgeURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse wallet_url %q: %w", bridgeURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
