// Package prompts implements MCP prompt handlers for the kanji dictionary.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StudyPrompt handles the kanji-study MCP prompt.
// It walks the AI through building out one kanji's entry.
type StudyPrompt struct{}

// NewStudyPrompt creates a StudyPrompt.
func NewStudyPrompt() *StudyPrompt {
	return &StudyPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StudyPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("kanji-study",
		mcp.WithPromptDescription(
			"Study one kanji: look it up, fill in missing meanings, readings and components, "+
				"and link the vocabulary that uses it.",
		),
		mcp.WithArgument("character",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("The kanji to study, e.g. 海"),
		),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription(
				"What to work on: 'all' (default), 'meanings', 'readings', 'components' or 'vocabulary'",
			),
		),
	)
}

var focusSteps = map[string]string{
	"meanings": "Review the meanings with `meaning_list`. Add missing ones with `meaning_add` " +
		"and, if the kanji has several readings with distinct senses, group them with " +
		"`reading_group_add` and `reading_group_assign`.",
	"readings": "Review the on and kun readings with `reading_list` and add missing ones with " +
		"`reading_add` (use okurigana for kun readings and the school level 小/中/高/外).",
	"components": "Break the kanji into components. Find each with `component_search`, create " +
		"missing ones with `component_create` and record them with `occurrence_add`, marking the radical.",
	"vocabulary": "Find words using the kanji with `vocab_search` (contains_kanji_ids) and add two " +
		"or three common ones with `vocab_create`.",
}

var focusOrder = []string{"meanings", "readings", "components", "vocabulary"}

// Handle processes the kanji-study prompt request.
func (p *StudyPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	character := strings.TrimSpace(req.Params.Arguments["character"])
	if character == "" {
		return nil, fmt.Errorf("argument 'character' is required")
	}
	focus := strings.ToLower(strings.TrimSpace(req.Params.Arguments["focus"]))
	if focus == "" {
		focus = "all"
	}

	var steps []string
	if step, ok := focusSteps[focus]; ok {
		steps = []string{step}
	} else if focus == "all" {
		for _, f := range focusOrder {
			steps = append(steps, focusSteps[f])
		}
	} else {
		return nil, fmt.Errorf("unknown focus %q: use all, %s", focus, strings.Join(focusOrder, ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I want to study the kanji %s.\n\n", character)
	fmt.Fprintf(&b, "1. Run `kanji_get` with character='%s'. If it is not in the dictionary yet, "+
		"create it with `kanji_create` and ask me for its stroke count and levels.\n", character)
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+2, step)
	}
	fmt.Fprintf(&b, "%d. Finish with `kanji_get` again and summarize what changed.\n\n", len(steps)+2)
	b.WriteString("Ask before deleting anything, and keep my personal notes untouched.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Study %s (%s)", character, focus),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}
