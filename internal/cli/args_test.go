package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/studiowebux/mimic/internal/types"
)

func TestParseRequestArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantPayload string
		wantProxy   string
		wantErr     string
	}{
		{"null payload", []string{"https://x", "get", "null", "{}"}, "", "", ""},
		{"object payload", []string{"https://x", "post", `{ "a": [1, 2] }`, "{}"}, `{"a":[1,2]}`, "", ""},
		{"scalar payload", []string{"https://x", "post", `42`, "{}"}, `42`, "", ""},
		{"empty object payload", []string{"https://x", "post", `{}`, "{}"}, "", "", ""},
		{"json null payload", []string{"https://x", "post", ` null `, "{}"}, "", "", ""},
		{"with proxy", []string{"https://x", "get", "null", "{}", "http://u:p@h:1"}, "", "http://u:p@h:1", ""},
		{"empty proxy", []string{"https://x", "get", "null", "{}", ""}, "", "", ""},
		{"null proxy", []string{"https://x", "get", "null", "{}", "null"}, "", "", ""},
		{"missing headers", []string{"https://x", "get", "null"}, "", "", "invalid_args: expected"},
		{"bad payload", []string{"https://x", "post", "{oops", "{}"}, "", "", "invalid_args: payload"},
		{"bad headers", []string{"https://x", "get", "null", "not-json"}, "", "", "invalid_args: headers"},
		{"headers array", []string{"https://x", "get", "null", "[1]"}, "", "", "invalid_args: headers"},
		{"nested header", []string{"https://x", "get", "null", `{"X":{"y":1}}`}, "", "", "invalid_args: headers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseRequestArgs(tt.args)
			if tt.wantErr != "" {
				var argErr *ArgumentError
				if !errors.As(err, &argErr) {
					t.Fatalf("Expected ArgumentError, got %v", err)
				}
				if !strings.HasPrefix(err.Error(), tt.wantErr) {
					t.Errorf("Expected error prefix %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(spec.Payload) != tt.wantPayload {
				t.Errorf("Expected payload %q, got %q", tt.wantPayload, spec.Payload)
			}
			if tt.wantPayload == "" && spec.Payload != nil {
				t.Errorf("Expected nil payload, got %q", spec.Payload)
			}
			if spec.Proxy != tt.wantProxy {
				t.Errorf("Expected proxy %q, got %q", tt.wantProxy, spec.Proxy)
			}
			if spec.Method != strings.ToUpper(tt.args[1]) {
				t.Errorf("Expected upper-cased method, got %q", spec.Method)
			}
		})
	}
}

func TestParseRequestArgs_Headers(t *testing.T) {
	spec, err := ParseRequestArgs([]string{
		"https://x", "GET", "null",
		`{"USER-AGENT":"bot","Accept":"*/*","X-Retry":3,"X-Debug":true}`,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := spec.Headers["USER-AGENT"]; ok {
		t.Error("Expected User-Agent to be removed")
	}
	if spec.Headers["Accept"] != "*/*" || spec.Headers["X-Retry"] != "3" || spec.Headers["X-Debug"] != "true" {
		t.Errorf("Unexpected headers %v", spec.Headers)
	}
}

func TestParsePresetArgs(t *testing.T) {
	preset := types.Preset{
		URL:     "https://api.example.com/connect",
		Headers: map[string]string{"Origin": "https://app.example.com", "user-agent": "x"},
	}

	tests := []struct {
		name        string
		args        []string
		wantPayload string
		wantProxy   string
	}{
		{"no args", nil, "{}", ""},
		{"valid payload", []string{`{"address": "0xabc"}`}, `{"address":"0xabc"}`, ""},
		{"malformed payload", []string{"{nope"}, "{}", ""},
		{"empty payload", []string{""}, "{}", ""},
		{"null payload", []string{"null"}, "", ""},
		{"proxy", []string{"{}", "socks5://127.0.0.1:1080"}, "{}", "socks5://127.0.0.1:1080"},
		{"null proxy", []string{"{}", "null"}, "{}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParsePresetArgs(preset, tt.args)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(spec.Payload) != tt.wantPayload {
				t.Errorf("Expected payload %q, got %q", tt.wantPayload, spec.Payload)
			}
			if spec.Proxy != tt.wantProxy {
				t.Errorf("Expected proxy %q, got %q", tt.wantProxy, spec.Proxy)
			}
			if spec.Method != "POST" || spec.URL != preset.URL {
				t.Errorf("Unexpected target %s %s", spec.Method, spec.URL)
			}
			if _, ok := spec.Headers["user-agent"]; ok {
				t.Error("Expected preset User-Agent to be removed")
			}
		})
	}
}

func TestParsePresetArgs_NoURL(t *testing.T) {
	_, err := ParsePresetArgs(types.Preset{Method: "POST"}, nil)

	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("Expected ArgumentError, got %v", err)
	}
}
