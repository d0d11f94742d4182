// Package dicttools provides MCP tool handlers for the kanji dictionary.
//
// Each tool follows the same shape:
// - A struct holding the *dictionary.Store, injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() validates arguments, calls the store and renders the result
//
// Domain failures never surface as Go errors. Mistakes the user can fix
// come back as "Validation error: ..." tool errors; anything else is
// logged and returned as "Unexpected error: ...".
package dicttools

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// idArg extracts a row id. Zero means missing.
func idArg(req mcp.CallToolRequest, key string) int64 {
	return int64(intArg(req, key, 0))
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// optString returns a pointer to a string argument, or nil when absent.
// An empty string is kept so callers can clear a field with "".
func optString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// optInt returns a pointer to a numeric argument, or nil when absent.
func optInt(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// optID is optInt for row ids.
func optID(req mcp.CallToolRequest, key string) *int64 {
	n := optInt(req, key)
	if n == nil {
		return nil
	}
	id := int64(*n)
	return &id
}

// optBool returns a pointer to a boolean argument, or nil when absent.
func optBool(req mcp.CallToolRequest, key string) *bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// idsArg extracts an array of ids. Non-numeric entries are rejected.
func idsArg(req mcp.CallToolRequest, key string) ([]int64, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("'%s' must be an array of ids", key)
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		f, ok := item.(float64)
		if !ok || f != float64(int64(f)) {
			return nil, fmt.Errorf("'%s' must be an array of ids, got %v", key, item)
		}
		ids = append(ids, int64(f))
	}
	return ids, nil
}

// stringsArg extracts an array of strings. A single comma-separated
// string is accepted too.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	switch v := req.GetArguments()[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// imageArg decodes a base64 image argument. nil means absent.
func imageArg(req mcp.CallToolRequest, key string) ([]byte, error) {
	s, ok := req.GetArguments()[key].(string)
	if !ok || s == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("'%s' must be base64-encoded image data", key)
	}
	return b, nil
}

// hasAnyArg reports whether any of keys was passed.
func hasAnyArg(req mcp.CallToolRequest, keys ...string) bool {
	args := req.GetArguments()
	for _, k := range keys {
		if _, ok := args[k]; ok {
			return true
		}
	}
	return false
}

// withAnyValue declares a property without a JSON type so callers can send
// a string, a number or null.
func withAnyValue(name, description string) mcp.ToolOption {
	return func(t *mcp.Tool) {
		t.InputSchema.Properties[name] = map[string]any{"description": description}
	}
}

// requireID returns a tool error result when key is missing.
func requireID(req mcp.CallToolRequest, key string) (int64, *mcp.CallToolResult) {
	id := idArg(req, key)
	if id <= 0 {
		return 0, mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return id, nil
}

// jsonResult renders v as indented JSON, prefixed by a one-line summary.
func jsonResult(tool, summary string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(tool, fmt.Errorf("marshal result: %w", err)), nil
	}
	if summary == "" {
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(summary + "\n\n" + string(data)), nil
}

// errorResult maps a store error to the tool error surface.
func errorResult(tool string, err error) *mcp.CallToolResult {
	if dictionary.IsUserError(err) {
		return mcp.NewToolResultError("Validation error: " + userMessage(err))
	}
	slog.Error("tool failed", "tool", tool, "err", err)
	return mcp.NewToolResultError("Unexpected error: " + err.Error())
}

// userMessage strips the repository prefix from user-facing errors.
func userMessage(err error) string {
	var re *dictionary.RepositoryError
	if errors.As(err, &re) {
		return re.Err.Error()
	}
	return err.Error()
}
