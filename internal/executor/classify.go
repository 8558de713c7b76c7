package executor

import (
	"bytes"
	"encoding/json"
	"strings"

	http "github.com/bogdanfinn/fhttp"
)

// BlockDetector recognizes an anti-bot challenge page served with a 403.
// It is a signature for one upstream's page, not a general detector: any
// 403 carrying one of the markers is reported as blocked.
type BlockDetector struct {
	Sentinel string
	Markers  []string
}

var (
	// APIBlock is used by the generic request command
	APIBlock = BlockDetector{
		Sentinel: "CLOUDFLARE_BLOCK_API",
		Markers:  []string{"<html"},
	}

	// PresetBlock is the default for fixed-endpoint presets
	PresetBlock = BlockDetector{
		Sentinel: "CLOUDFLARE_BLOCKED_ME",
		Markers:  []string{"<!doctype html", "<html"},
	}
)

// IsBlocked reports whether status and body look like a block page.
// Markers are matched case-insensitively.
func (d BlockDetector) IsBlocked(status int, body string) bool {
	if status != http.StatusForbidden {
		return false
	}
	lower := strings.ToLower(body)
	for _, marker := range d.Markers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// parseJSONBody returns the compacted body when it is valid JSON, nil otherwise
func parseJSONBody(body []byte) json.RawMessage {
	if !json.Valid(body) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil
	}
	return buf.Bytes()
}

// flattenHeaders joins repeated header values with ", "
func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		headers[key] = strings.Join(values, ", ")
	}
	return headers
}

// SanitizeHeaders returns a copy of headers without any User-Agent entry.
// The impersonating client sets its own value to match the TLS fingerprint.
func SanitizeHeaders(headers map[string]string) map[string]string {
	clean := make(map[string]string, len(headers))
	for key, value := range headers {
		if strings.EqualFold(key, "User-Agent") {
			continue
		}
		clean[key] = value
	}
	return clean
}
