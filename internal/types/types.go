package types

import (
	"encoding/json"
	"time"
)

// NullMarker is the literal positional value meaning "no payload" or "no proxy"
const NullMarker = "null"

// RequestSpec is a fully decoded request ready for dispatch
type RequestSpec struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method" yaml:"method"`
	Payload json.RawMessage   `json:"payload,omitempty" yaml:"-"` // nil when no body is sent
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Proxy   string            `json:"proxy,omitempty" yaml:"proxy,omitempty"` // empty means direct connection
}

// Profile names the browser fingerprint every request presents
type Profile struct {
	Name      string `yaml:"name"`
	UserAgent string `yaml:"user_agent"`
}

// Preset is a fixed endpoint with its own header set and block sentinel
type Preset struct {
	URL      string            `yaml:"url"`
	Method   string            `yaml:"-"`
	Headers  map[string]string `yaml:"headers"`
	Sentinel string            `yaml:"sentinel"`
	Markers  []string          `yaml:"markers"`
}

// ResultKind discriminates the three shapes a Result can take
type ResultKind int

const (
	// KindOK is a response obtained from the remote end, whatever its status
	KindOK ResultKind = iota
	// KindInvalidArgs means the inputs could not be decoded; nothing was sent
	KindInvalidArgs
	// KindTransport means dispatch failed before a response was read
	KindTransport
)

// String returns the name stored in history
func (k ResultKind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindInvalidArgs:
		return "invalid_args"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Result is the single record written to stdout per invocation.
// Build it with OK, InvalidArgs or TransportFailure so the shape always
// matches Kind.
type Result struct {
	Kind       ResultKind
	StatusCode int
	Headers    map[string]string
	Text       string
	JSON       json.RawMessage // nil when the body is not valid JSON
	ProxyUsed  string
	Error      string
	Blocked    bool

	// Query holds the projection of JSON when a query expression was given
	Query      json.RawMessage
	QueryError string
	HasQuery   bool
}

// OK builds the result of a request that produced a response
func OK(status int, headers map[string]string, text string, body json.RawMessage, proxy string, blocked bool) *Result {
	if headers == nil {
		headers = map[string]string{}
	}
	return &Result{
		Kind:       KindOK,
		StatusCode: status,
		Headers:    headers,
		Text:       text,
		JSON:       body,
		ProxyUsed:  proxy,
		Blocked:    blocked,
	}
}

// InvalidArgs builds the result of inputs that could not be decoded
func InvalidArgs(detail string) *Result {
	return &Result{
		Kind:  KindInvalidArgs,
		Error: "invalid_args: " + detail,
	}
}

// TransportFailure builds the result of a dispatch that failed
func TransportFailure(err error, proxy string) *Result {
	return &Result{
		Kind:      KindTransport,
		Error:     err.Error(),
		ProxyUsed: proxy,
	}
}

type okRecord struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Text       string            `json:"text"`
	ProxyUsed  *string           `json:"proxy_used"`
	JSON       json.RawMessage   `json:"json"`
	Query      json.RawMessage   `json:"query,omitempty"`
	QueryError string            `json:"query_error,omitempty"`
}

type invalidArgsRecord struct {
	Error string `json:"error"`
}

type transportRecord struct {
	Error      string  `json:"error"`
	StatusCode int     `json:"status_code"`
	ProxyUsed  *string `json:"proxy_used"`
}

// MarshalJSON emits the shape that belongs to the result kind
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindInvalidArgs:
		return json.Marshal(invalidArgsRecord{Error: r.Error})
	case KindTransport:
		return json.Marshal(transportRecord{
			Error:      r.Error,
			StatusCode: 0,
			ProxyUsed:  optional(r.ProxyUsed),
		})
	default:
		rec := okRecord{
			StatusCode: r.StatusCode,
			Headers:    r.Headers,
			Text:       r.Text,
			ProxyUsed:  optional(r.ProxyUsed),
			JSON:       r.JSON,
		}
		if rec.JSON == nil {
			rec.JSON = json.RawMessage("null")
		}
		if r.HasQuery {
			if r.QueryError != "" {
				rec.QueryError = r.QueryError
			} else if r.Query != nil {
				rec.Query = r.Query
			} else {
				rec.Query = json.RawMessage("null")
			}
		}
		return json.Marshal(rec)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// HistoryEntry represents one recorded invocation
type HistoryEntry struct {
	ID         string            `json:"id"`
	Timestamp  string            `json:"timestamp"`
	Command    string            `json:"command"`
	Method     string            `json:"method,omitempty"`
	URL        string            `json:"url,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Proxy      string            `json:"proxy,omitempty"`
	Profile    string            `json:"profile,omitempty"`
	Kind       string            `json:"kind"`
	StatusCode int               `json:"statusCode"`
	Blocked    bool              `json:"blocked"`
	BodySize   int               `json:"bodySize"`
	Duration   int64             `json:"duration"` // milliseconds
	Error      string            `json:"error,omitempty"`
}

// Invocation is what the CLI hands to the history store after a run
type Invocation struct {
	ID       string
	Command  string
	Spec     *RequestSpec
	Profile  string
	Result   *Result
	Started  time.Time
	Duration time.Duration
}
