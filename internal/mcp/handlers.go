package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	session *ops.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(s *ops.Session) *Handlers {
	return &Handlers{session: s}
}

// Request types for each tool

// StartRequest represents the arguments for start.
type StartRequest struct {
	Tag         *string `json:"tag,omitempty"`
	Description *string `json:"description,omitempty"`
	FromID      string  `json:"from_id,omitempty"`
}

// FillRequest represents the arguments for fill.
type FillRequest struct {
	Tag         *string `json:"tag,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateRequest represents the arguments for update.
type UpdateRequest struct {
	ID          string  `json:"id"`
	Tag         *string `json:"tag,omitempty"`
	Description *string `json:"description,omitempty"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
}

// IDRequest represents the arguments of tools addressing one record.
type IDRequest struct {
	ID string `json:"id"`
}

// AddRequest represents the arguments for add.
type AddRequest struct {
	Date string `json:"date,omitempty"`
}

// MoveRequest represents the arguments for move.
type MoveRequest struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Date string `json:"date,omitempty"`
	All  bool   `json:"all,omitempty"`
}

// StatsRequest represents the arguments for stats.
type StatsRequest struct {
	Range string `json:"range,omitempty"`
	Date  string `json:"date,omitempty"`
	Sort  string `json:"sort,omitempty"`
	Order string `json:"order,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path  string `json:"path,omitempty"`
	Label string `json:"label,omitempty"`
}

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// Handler implementations

// HandleStart handles the start tool call.
func (h *Handlers) HandleStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Start(h.session, ops.StartInput{
		Tag:         input.Tag,
		Description: input.Description,
		FromID:      input.FromID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFinish handles the finish tool call.
func (h *Handlers) HandleFinish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Finish(h.session)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTap handles the tap tool call.
func (h *Handlers) HandleTap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Tap(h.session)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFill handles the fill tool call.
func (h *Handlers) HandleFill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FillRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fill(h.session, ops.FillInput{
		Tag:         input.Tag,
		Description: input.Description,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(h.session, ops.UpdateInput{
		ID:          input.ID,
		Tag:         input.Tag,
		Description: input.Description,
		Start:       input.Start,
		End:         input.End,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAdd handles the add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Add(h.session, ops.AddInput{Date: input.Date})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDuplicate handles the duplicate tool call.
func (h *Handlers) HandleDuplicate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Duplicate(h.session, ops.DuplicateInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRemove handles the remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Remove(h.session, ops.RemoveInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleMove handles the move tool call.
func (h *Handlers) HandleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Move(h.session, ops.MoveInput{
		ID:        input.ID,
		Direction: ops.Direction(input.Direction),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.session, ops.ListInput{Date: input.Date, All: input.All})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(h.session)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStats handles the stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Stats(h.session, ops.StatsInput{
		Range: input.Range,
		Date:  input.Date,
		Sort:  input.Sort,
		Order: input.Order,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTags handles the tags tool call.
func (h *Handlers) HandleTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Tags(h.session)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.session, ops.ExportInput{
		Path:  input.Path,
		Label: input.Label,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.session, ops.ImportInput{
		Path:   input.Path,
		DryRun: input.DryRun,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var wErr *errors.WorklogError
	if stderrors.As(err, &wErr) {
		errorObj := map[string]any{
			"code":    wErr.Code,
			"message": wErr.Message,
			"status":  wErr.Status,
		}
		// Keep the wrapping context ("items[2]: ...") in the message.
		if err.Error() != wErr.Error() {
			errorObj["message"] = err.Error()
		}
		if wErr.Code != errors.ErrInternal && wErr.Details != nil {
			errorObj["details"] = wErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
