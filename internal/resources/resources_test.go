package resources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func newTestStore(t *testing.T) *dictionary.Store {
	t.Helper()
	store, err := dictionary.New(dictionary.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func readReq(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func text(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T, want TextResourceContents", contents[0])
	}
	return tc
}

func TestHandleStats(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewHandler(store)

	if got := h.StatsResource().URI; got != StatsURI {
		t.Errorf("URI = %q, want %q", got, StatsURI)
	}

	contents, err := h.HandleStats(context.Background(), readReq(StatsURI))
	if err != nil {
		t.Fatalf("HandleStats: %v", err)
	}
	tc := text(t, contents)
	if tc.MIMEType != "application/json" {
		t.Errorf("MIME type = %q", tc.MIMEType)
	}

	var st dictionary.Stats
	if err := json.Unmarshal([]byte(tc.Text), &st); err != nil {
		t.Fatalf("stats are not JSON: %v\n%s", err, tc.Text)
	}
	if st.Kanji == 0 || st.SchemaVersion == 0 {
		t.Errorf("stats = %+v, want seeded counts", st)
	}
}

func TestHandleStats_ClosedStore(t *testing.T) {
	store := newTestStore(t)
	_ = store.Close()

	contents, err := NewHandler(store).HandleStats(context.Background(), readReq(StatsURI))
	if err != nil {
		t.Fatalf("HandleStats should not return a Go error: %v", err)
	}
	tc := text(t, contents)
	if tc.MIMEType != "text/plain" || !strings.HasPrefix(tc.Text, "Error: ") {
		t.Errorf("error resource = %+v", tc)
	}
}

func TestHandleReferenceTypes(t *testing.T) {
	h := NewHandler(newTestStore(t))
	contents, err := h.HandleReferenceTypes(context.Background(), readReq(ReferenceTypesURI))
	if err != nil {
		t.Fatalf("HandleReferenceTypes: %v", err)
	}
	tc := text(t, contents)
	if !strings.Contains(tc.Text, `"type_name": "pictograph"`) {
		t.Errorf("classification types missing:\n%s", tc.Text)
	}
	if !strings.Contains(tc.Text, `"position_types": []`) {
		t.Errorf("position types should be empty before seeding:\n%s", tc.Text)
	}
}
