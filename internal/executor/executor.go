package executor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/studiowebux/mimic/internal/types"
)

// RequestTimeout bounds a whole dispatch, from dial to the last body byte
const RequestTimeout = 30 * time.Second

// Executor dispatches one request through an impersonating client
type Executor struct {
	profile   types.Profile
	newClient ClientFactory
	detector  BlockDetector
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithClientFactory replaces the tls-client factory
func WithClientFactory(f ClientFactory) Option {
	return func(e *Executor) {
		e.newClient = f
	}
}

// WithBlockDetector sets the block page signature and sentinel
func WithBlockDetector(d BlockDetector) Option {
	return func(e *Executor) {
		e.detector = d
	}
}

// WithLogger sets the logger used for dispatch diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an executor bound to the process-wide profile
func New(profile types.Profile, opts ...Option) *Executor {
	e := &Executor{
		profile:   profile,
		newClient: NewTLSClient,
		detector:  APIBlock,
		timeout:   RequestTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the request and always returns a result.
// A transport failure becomes a transport result; it never escapes as an error.
func (e *Executor) Execute(ctx context.Context, spec *types.RequestSpec) *types.Result {
	result, err := e.dispatch(ctx, spec)
	if err != nil {
		e.logger.Warn("request failed", "url", spec.URL, "proxy", spec.Proxy, "error", err)
		return types.TransportFailure(err, spec.Proxy)
	}
	return result
}

func (e *Executor) dispatch(ctx context.Context, spec *types.RequestSpec) (*types.Result, error) {
	client, err := e.newClient(ClientOptions{
		Profile: e.profile,
		Proxy:   spec.Proxy,
		Timeout: e.timeout,
	})
	if err != nil {
		return nil, &TransportError{Op: "failed to configure client", Proxy: spec.Proxy, Err: err}
	}
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := buildRequest(ctx, spec)
	if err != nil {
		return nil, &TransportError{Op: "failed to create request", Proxy: spec.Proxy, Err: err}
	}

	e.logger.Debug("dispatching request",
		"method", req.Method,
		"url", spec.URL,
		"profile", e.profile.Name,
		"proxy", spec.Proxy,
		"payload", spec.Payload != nil,
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "failed to send request", Proxy: spec.Proxy, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "failed to read response body", Proxy: spec.Proxy, Err: err}
	}

	text := string(bodyBytes)
	blocked := e.detector.IsBlocked(resp.StatusCode, text)
	if blocked {
		e.logger.Info("block page detected", "url", spec.URL, "status", resp.StatusCode)
		text = e.detector.Sentinel
	}

	// JSON is parsed from the original body, even when the text was replaced
	return types.OK(
		resp.StatusCode,
		flattenHeaders(resp.Header),
		text,
		parseJSONBody(bodyBytes),
		spec.Proxy,
		blocked,
	), nil
}

func buildRequest(ctx context.Context, spec *types.RequestSpec) (*http.Request, error) {
	var body io.Reader
	if spec.Payload != nil {
		body = bytes.NewReader(spec.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(spec.Method), spec.URL, body)
	if err != nil {
		return nil, err
	}

	for key, value := range SanitizeHeaders(spec.Headers) {
		req.Header.Set(key, value)
	}
	if spec.Payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
