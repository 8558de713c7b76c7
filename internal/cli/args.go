package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studiowebux/mimic/internal/executor"
	"github.com/studiowebux/mimic/internal/types"
)

// ParseRequestArgs decodes the positional inputs of the request command:
// url, method, payload (JSON or "null"), headers (JSON object), optional proxy.
// Every failure is an *ArgumentError.
func ParseRequestArgs(args []string) (*types.RequestSpec, error) {
	if len(args) < 4 {
		return nil, &ArgumentError{
			Detail: fmt.Sprintf("expected url, method, payload and headers, got %d argument(s)", len(args)),
		}
	}

	payload, err := decodePayload(args[2])
	if err != nil {
		return nil, &ArgumentError{Detail: fmt.Sprintf("payload: %v", err)}
	}

	headers, err := decodeHeaders(args[3])
	if err != nil {
		return nil, &ArgumentError{Detail: fmt.Sprintf("headers: %v", err)}
	}

	var proxy string
	if len(args) > 4 {
		proxy = proxyArg(args[4])
	}

	return &types.RequestSpec{
		URL:     args[0],
		Method:  strings.ToUpper(args[1]),
		Payload: payload,
		Headers: executor.SanitizeHeaders(headers),
		Proxy:   proxy,
	}, nil
}

// ParsePresetArgs decodes the positional inputs of the connect command:
// optional payload, optional proxy. A missing or malformed payload becomes {}.
// Presets are always sent as POST.
func ParsePresetArgs(preset types.Preset, args []string) (*types.RequestSpec, error) {
	if preset.URL == "" {
		return nil, &ArgumentError{Detail: "preset has no url configured"}
	}

	payload := json.RawMessage(`{}`)
	if len(args) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(args[0])); err == nil {
			payload = buf.Bytes()
		}
	}
	if string(payload) == types.NullMarker {
		payload = nil
	}

	var proxy string
	if len(args) > 1 {
		proxy = proxyArg(args[1])
	}

	headers := make(map[string]string, len(preset.Headers))
	for key, value := range preset.Headers {
		headers[key] = value
	}

	return &types.RequestSpec{
		URL:     preset.URL,
		Method:  "POST",
		Payload: payload,
		Headers: executor.SanitizeHeaders(headers),
		Proxy:   proxy,
	}, nil
}

// decodePayload returns nil for the null marker and for empty values
func decodePayload(raw string) (json.RawMessage, error) {
	if raw == types.NullMarker {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return nil, err
	}

	switch buf.String() {
	case "null", "{}", "[]", `""`:
		return nil, nil
	}
	return buf.Bytes(), nil
}

// decodeHeaders accepts a JSON object whose values are strings, numbers or booleans
func decodeHeaders(raw string) (map[string]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(fields))
	for key, value := range fields {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			headers[key] = s
			continue
		}
		var scalar any
		if err := json.Unmarshal(value, &scalar); err != nil {
			return nil, err
		}
		switch scalar.(type) {
		case float64, bool:
			headers[key] = string(value)
		default:
			return nil, fmt.Errorf("value of %q must be a string", key)
		}
	}
	return headers, nil
}

func proxyArg(raw string) string {
	if raw == types.NullMarker {
		return ""
	}
	return strings.TrimSpace(raw)
}
