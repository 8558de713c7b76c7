package filter

import (
	"encoding/json"
	"testing"
)

func TestQuery(t *testing.T) {
	body := json.RawMessage(`{"data":{"token":"abc","items":[{"id":1,"ok":true},{"id":2,"ok":false}]}}`)

	tests := []struct {
		name       string
		expression string
		expected   string
		wantErr    bool
	}{
		{"field", "data.token", `"abc"`, false},
		{"projection", "data.items[].id", `[1,2]`, false},
		{"filter", "data.items[?ok].id", `[1]`, false},
		{"missing", "data.nothing", `null`, false},
		{"syntax error", "data.[", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Query(body, tt.expression)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Query(%q) error = %v, wantErr %v", tt.expression, err, tt.wantErr)
			}
			if !tt.wantErr && string(out) != tt.expected {
				t.Errorf("Query(%q) = %s, want %s", tt.expression, out, tt.expected)
			}
		})
	}
}

func TestQuery_InvalidJSON(t *testing.T) {
	if _, err := Query(json.RawMessage(`hello`), "a"); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
