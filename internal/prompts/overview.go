package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OverviewPrompt handles the dictionary-overview MCP prompt.
// It instructs the AI to summarize the dictionary and suggest gaps to fill.
type OverviewPrompt struct{}

// NewOverviewPrompt creates an OverviewPrompt.
func NewOverviewPrompt() *OverviewPrompt {
	return &OverviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OverviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("dictionary-overview",
		mcp.WithPromptDescription(
			"Summarize the dictionary: how much is in it and which entries are still incomplete.",
		),
	)
}

// Handle processes the dictionary-overview prompt request.
func (p *OverviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Dictionary overview",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `dict_stats` to see what my kanji dictionary holds.\n\n" +
						"Then:\n" +
						"1. If it is empty, offer to load the sample data with `db_seed`\n" +
						"2. Use `kanji_search` with notes_etymology='empty' and with stroke_diagram='missing' to find incomplete entries\n" +
						"3. List up to ten kanji that most need work, with what is missing for each\n" +
						"4. Suggest which one to study next with the kanji-study prompt",
				),
			},
		},
	}, nil
}
