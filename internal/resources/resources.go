// Package resources implements MCP resource handlers for the kanji dictionary.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (kanjidict://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

const (
	StatsURI          = "kanjidict://stats"
	ReferenceTypesURI = "kanjidict://reference-types"
)

// Handler serves dictionary resources from a store.
type Handler struct {
	store *dictionary.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *dictionary.Store) *Handler {
	return &Handler{store: store}
}

// StatsResource returns the MCP resource definition for the row counts.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Dictionary statistics",
		mcp.WithResourceDescription("Row counts of every dictionary table and the schema version"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns the current row counts as JSON.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	st, err := h.store.Stats(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, st)
}

// ReferenceTypesResource returns the MCP resource definition for the
// classification and position type lists.
func (h *Handler) ReferenceTypesResource() mcp.Resource {
	return mcp.NewResource(
		ReferenceTypesURI,
		"Reference types",
		mcp.WithResourceDescription("Classification types (六書) and component position types with their ids"),
		mcp.WithMIMEType("application/json"),
	)
}

type referenceTypes struct {
	ClassificationTypes []dictionary.ClassificationType `json:"classification_types"`
	PositionTypes       []dictionary.PositionType       `json:"position_types"`
}

// HandleReferenceTypes returns both reference lists as JSON.
func (h *Handler) HandleReferenceTypes(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var out referenceTypes
	var err error
	if out.ClassificationTypes, err = h.store.ListClassificationTypes(ctx); err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if out.PositionTypes, err = h.store.ListPositionTypes(ctx); err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
