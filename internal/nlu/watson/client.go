package watson

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

	"go.uber.org/zap"

	"news-classifier/internal/nlu"
	"news-classifier/internal/shared/apperr"
	"news-classifier/internal/shared/ibmiam"
)

const (
	defaultVersion = "2023-03-25"
	maxBodyBytes   = 10 << 20
)

// Options configures a Client.
type Options struct {
	APIKey      string
	URL         string
	Version     string
	IAMTokenURL string
	Timeout     time.Duration
	// HTTPClient overrides the IAM-authenticated client, mainly for tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client implements nlu.Client against Watson Natural Language Understanding v1.
type Client struct {
	endpoint   string
	version    string
	features   nlu.Features
	httpClient *http.Client
	logger     *zap.Logger
}

// APIError carries the message returned by the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error: %s, Status code: %d", e.Message, e.StatusCode)
}

// NewClient binds a client to the service URL. Failures are ServiceInitError.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" && opts.HTTPClient == nil {
		return nil, apperr.New(apperr.KindServiceInit, "NLU API key is required")
	}
	base, err := url.Parse(strings.TrimSpace(opts.URL))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindServiceInit, "invalid NLU service URL", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, apperr.New(apperr.KindServiceInit, fmt.Sprintf("invalid NLU service URL %q", opts.URL))
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = defaultVersion
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = ibmiam.NewClient(context.Background(), opts.APIKey, opts.IAMTokenURL, timeout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   strings.TrimRight(base.String(), "/") + "/v1/analyze",
		version:    version,
		features:   nlu.DefaultFeatures(),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type analyzeRequest struct {
	Text     string       `json:"text"`
	Features nlu.Features `json:"features"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type usageEnvelope struct {
	Usage *struct {
		TextUnits      int `json:"text_units"`
		TextCharacters int `json:"text_characters"`
		Features       int `json:"features"`
	} `json:"usage"`
	Language string `json:"language"`
}

// Analyze sends text to the service and returns its JSON result.
func (c *Client) Analyze(ctx context.Context, text string) (json.RawMessage, error) {
	payload, err := json.Marshal(analyzeRequest{Text: text, Features: c.features})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?version="+url.QueryEscape(c.version), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("nlu request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, body)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("nlu response parse: invalid JSON")
	}
	c.logUsage(body)
	return json.RawMessage(body), nil
}

func parseError(status int, body []byte) error {
	var parsed errorResponse
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = strings.TrimSpace(parsed.Error)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (c *Client) logUsage(body []byte) {
	var env usageEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Usage == nil {
		c.logger.Debug("nlu response", zap.String("version", c.version))
		return
	}
	c.logger.Debug("nlu response",
		zap.String("version", c.version),
		zap.String("language", env.Language),
		zap.Int("text_units", env.Usage.TextUnits),
		zap.Int("text_characters", env.Usage.TextCharacters),
		zap.Int("features", env.Usage.Features),
	)
}

var _ nlu.Client = (*Client)(nil)
