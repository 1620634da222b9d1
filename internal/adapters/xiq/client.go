package xiq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.extremecloudiq.com"

	defaultTimeout       = 30 * time.Second
	defaultSubmitTimeout = 60 * time.Second
	maxResponseBytes     = 32 << 20
)

type Config struct {
	BaseURL            string
	Timeout            time.Duration
	SubmitTimeout      time.Duration
	RateLimitPerMinute int
	Transport          http.RoundTripper
	Logger             *logrus.Entry
}

type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	timeout       time.Duration
	submitTimeout time.Duration
	log           *logrus.Entry

	mu    sync.RWMutex
	token string
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse api base url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = defaultSubmitTimeout
	}
	log := cfg.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logrus.NewEntry(discard)
	}
	log = log.WithField("component", "xiq")

	c := &Client{
		baseURL:       parsed,
		timeout:       cfg.Timeout,
		submitTimeout: cfg.SubmitTimeout,
		log:           log,
	}
	c.httpClient = &http.Client{
		Transport: chain(cfg.Transport,
			requestLogging(log),
			rateLimit(newLimiter(cfg.RateLimitPerMinute), log),
			jsonHeaders(),
			bearerAuth(c.currentToken),
		),
	}

	return c, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// get returns the JSON body of a 200 response.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, endpoint, err := c.do(ctx, http.MethodGet, path, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.statusError(endpoint, resp)
	}

	return decodable(endpoint, resp.body)
}

// post returns the JSON body of a 200 response; created is set on 201 and the body is not parsed.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, bool, error) {
	resp, endpoint, err := c.do(ctx, http.MethodPost, path, payload, c.timeout)
	if err != nil {
		return nil, false, err
	}

	switch resp.status {
	case http.StatusOK:
		body, err := decodable(endpoint, resp.body)
		return body, false, err
	case http.StatusCreated:
		return nil, true, nil
	default:
		return nil, false, c.statusError(endpoint, resp)
	}
}

// postAsync expects 202 Accepted and returns the Location header.
func (c *Client) postAsync(ctx context.Context, path string, payload any) (string, error) {
	resp, endpoint, err := c.do(ctx, http.MethodPost, path, payload, c.submitTimeout)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusAccepted {
		return "", c.statusError(endpoint, resp)
	}

	location := resp.header.Get("Location")
	if location == "" {
		return "", &domain.MalformedResponseError{URL: endpoint, Reason: "accepted response without Location header"}
	}

	return location, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, timeout time.Duration) (response, string, error) {
	endpoint, err := c.resolve(path)
	if err != nil {
		return response{}, path, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return response{}, endpoint, errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(encoded)
	}

	reqCtx, cancel := requestContext(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, body)
	if err != nil {
		return response{}, endpoint, errors.Wrapf(err, "create %s request", method)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, endpoint, &domain.TransportError{Method: method, URL: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, endpoint, &domain.TransportError{Method: method, URL: endpoint, Err: errors.Wrap(err, "read response body")}
	}

	return response{status: resp.StatusCode, header: resp.Header, body: data}, endpoint, nil
}

// resolve accepts API paths and absolute polling locations.
func (c *Client) resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("api path is required")
	}

	endpoint, err := c.baseURL.Parse(path)
	if err != nil {
		return "", errors.Wrapf(err, "parse api path %q", path)
	}

	return endpoint.String(), nil
}

func (c *Client) statusError(endpoint string, resp response) error {
	statusErr := &domain.HTTPStatusError{
		Code:         resp.status,
		URL:          endpoint,
		ErrorMessage: gjson.GetBytes(resp.body, "error_message").String(),
	}
	c.log.WithFields(logrus.Fields{
		"url":           endpoint,
		"status":        resp.status,
		"error_message": statusErr.ErrorMessage,
	}).Error("unexpected api status")

	return statusErr
}

func decodable(endpoint string, body []byte) ([]byte, error) {
	if !json.Valid(body) {
		return nil, &domain.MalformedResponseError{URL: endpoint, Reason: "body is not valid JSON"}
	}

	return body, nil
}

func decodeInto[T any](endpoint string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &domain.MalformedResponseError{URL: endpoint, Reason: "unexpected JSON shape", Err: err}
	}

	return out, nil
}

func requestContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}
