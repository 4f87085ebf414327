package request

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Client is the HTTP-backed Exchanger. A zero-option Client uses a dedicated
// http.Client with a 30s timeout and no proxy.
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithHTTPClient replaces the underlying http.Client entirely. Proxy, TLS
// and timeout policy then belong to the caller.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithProxy routes all exchanges through the given proxy URL.
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) error {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return errors.Wrap(err, "[WithProxy] parse proxy URL")
		}
		c.httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
		return nil
	}
}

// WithLogger sets the logger used for per-exchange debug lines.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// NewClient builds an Exchanger over net/http.
func NewClient(options ...ClientOption) (*Client, error) {
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// ExchangeJSON implements Exchanger.
func (c *Client) ExchangeJSON(ctx context.Context, endpoint string, payload any, out any, headers map[string]string) error {
	var body io.Reader
	method := http.MethodGet
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "[ExchangeJSON] encode payload")
		}
		body = bytes.NewReader(encoded)
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "[ExchangeJSON] build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, out)
}

// ExchangeForm implements Exchanger.
func (c *Client) ExchangeForm(ctx context.Context, endpoint string, fields url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(fields.Encode()))
	if err != nil {
		return errors.Wrap(err, "[ExchangeForm] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("exchange")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[request] %s %s", req.Method, req.URL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "[request] read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		decodeErrorBody(body, statusErr)
		c.log.Debug().Int("status", resp.StatusCode).Str("error", statusErr.ErrorCode).Msg("exchange failed")
		return statusErr
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "[request] decode response")
	}
	return nil
}

// decodeErrorBody fills statusErr from whichever error shape the server
// used. Both shapes share the "error" key.
func decodeErrorBody(body []byte, statusErr *StatusError) {
	var parsed struct {
		Error            string `json:"error"`
		ErrorMessage     string `json:"errorMessage"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return
	}
	statusErr.ErrorCode = parsed.Error
	statusErr.Message = parsed.ErrorMessage
	if statusErr.Message == "" {
		statusErr.Message = parsed.ErrorDescription
	}
}
