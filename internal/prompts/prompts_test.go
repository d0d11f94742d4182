package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptReq(args map[string]string) mcp.GetPromptRequest {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = args
	return req
}

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if len(r.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(r.Messages))
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", r.Messages[0].Content)
	}
	return tc.Text
}

func TestStudyPrompt_Definition(t *testing.T) {
	def := NewStudyPrompt().Definition()
	if def.Name != "kanji-study" {
		t.Errorf("prompt name = %q, want kanji-study", def.Name)
	}
	if len(def.Arguments) != 2 || def.Arguments[0].Name != "character" || !def.Arguments[0].Required {
		t.Errorf("arguments = %+v", def.Arguments)
	}
}

func TestStudyPrompt_Handle(t *testing.T) {
	p := NewStudyPrompt()

	r, err := p.Handle(context.Background(), promptReq(map[string]string{"character": "海"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := promptText(t, r)
	for _, want := range []string{"character='海'", "meaning_list", "reading_add", "occurrence_add", "vocab_create", "5. Finish"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
	if r.Description != "Study 海 (all)" {
		t.Errorf("description = %q", r.Description)
	}

	r, err = p.Handle(context.Background(), promptReq(map[string]string{"character": "海", "focus": "Readings"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text = promptText(t, r)
	if !strings.Contains(text, "reading_list") || strings.Contains(text, "vocab_search") {
		t.Errorf("readings focus:\n%s", text)
	}
}

func TestStudyPrompt_BadArguments(t *testing.T) {
	p := NewStudyPrompt()
	if _, err := p.Handle(context.Background(), promptReq(nil)); err == nil {
		t.Error("missing character should fail")
	}
	if _, err := p.Handle(context.Background(), promptReq(map[string]string{"character": "海", "focus": "calligraphy"})); err == nil {
		t.Error("unknown focus should fail")
	}
}

func TestOverviewPrompt(t *testing.T) {
	p := NewOverviewPrompt()
	if p.Definition().Name != "dictionary-overview" {
		t.Errorf("prompt name = %q", p.Definition().Name)
	}
	r, err := p.Handle(context.Background(), promptReq(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if text := promptText(t, r); !strings.Contains(text, "dict_stats") {
		t.Errorf("overview prompt:\n%s", text)
	}
}
