package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/learn"
	"github.com/hpungsan/armina/internal/library"
	"github.com/hpungsan/armina/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	lib      *library.Library
	sessions *learn.Registry
	cfg      *config.Config
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(lib *library.Library, sessions *learn.Registry, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{lib: lib, sessions: sessions, cfg: cfg, logger: logger}
}

// Request types for each tool

// SaveRequest represents the arguments for capsule_save.
type SaveRequest struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	Subject      string `json:"subject,omitempty"`
	Level        string `json:"level,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Flashcards   string `json:"flashcards,omitempty"`
	Quiz         string `json:"quiz,omitempty"`
	ConfirmEmpty bool   `json:"confirm_empty,omitempty"`
}

// IDRequest addresses a single capsule.
type IDRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for capsule_list.
type ListRequest struct {
	Subject string `json:"subject,omitempty"`
	Level   string `json:"level,omitempty"`
	Query   string `json:"query,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// ResetRequest represents the arguments for capsule_reset.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// PathRequest represents the arguments for capsule_export and capsule_import.
type PathRequest struct {
	Path string `json:"path,omitempty"`
}

// SessionRequest addresses a learn session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// FlashcardRequest represents the arguments for learn_flashcard.
type FlashcardRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action,omitempty"`
}

// AnswerRequest represents the arguments for learn_answer.
type AnswerRequest struct {
	SessionID string `json:"session_id"`
	Choice    *int   `json:"choice"`
}

// Handler implementations

// HandleSave handles the capsule_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Save(ctx, h.lib, h.cfg, ops.SaveInput{
		ID:             input.ID,
		Title:          input.Title,
		Subject:        input.Subject,
		Level:          input.Level,
		NotesText:      input.Notes,
		FlashcardsText: input.Flashcards,
		QuizText:       input.Quiz,
		ConfirmEmpty:   input.ConfirmEmpty,
	})
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the capsule_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.lib, input.ID)
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleList handles the capsule_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.lib, ops.ListInput{
		Subject: input.Subject,
		Level:   input.Level,
		Query:   input.Query,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the capsule_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.lib, input.ID)
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleReset handles the capsule_reset tool call.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm must be true")), nil
	}

	result, err := ops.Reset(ctx, h.lib)
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleExport handles the capsule_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.lib, h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleImport handles the capsule_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.lib, h.cfg, ops.ImportInput{Path: input.Path})
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(result)
}

// HandleLearnStart handles the learn_start tool call.
func (h *Handlers) HandleLearnStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session, err := learn.Start(ctx, h.lib.Records, input.ID, h.logger)
	if err != nil {
		return h.fail(err), nil
	}
	h.sessions.Add(session)
	return successResult(session.View())
}

// HandleLearnView handles the learn_view tool call.
func (h *Handlers) HandleLearnView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session, err := h.sessions.Get(input.SessionID)
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(session.View())
}

// HandleLearnFlashcard handles the learn_flashcard tool call.
func (h *Handlers) HandleLearnFlashcard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FlashcardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session, err := h.sessions.Get(input.SessionID)
	if err != nil {
		return h.fail(err), nil
	}
	action := input.Action
	if action == "" {
		action = learn.ActionCurrent
	}
	card, err := session.Flashcard(action)
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(card)
}

// HandleLearnAnswer handles the learn_answer tool call.
func (h *Handlers) HandleLearnAnswer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnswerRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session, err := h.sessions.Get(input.SessionID)
	if err != nil {
		return h.fail(err), nil
	}
	choice := -1
	if input.Choice != nil {
		choice = *input.Choice
	}
	answer, err := session.Answer(ctx, choice)
	if err != nil {
		return h.fail(err), nil
	}
	return successResult(answer)
}

// Result helpers

// fail logs internal failures before converting err to a tool error.
func (h *Handlers) fail(err error) *mcp.CallToolResult {
	var aErr *errors.ArminaError
	if !stderrors.As(err, &aErr) || aErr.Code == errors.ErrInternal {
		h.logger.Error("tool call failed", zap.Error(err))
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var aErr *errors.ArminaError
	if stderrors.As(err, &aErr) {
		errorObj := map[string]any{
			"code":    aErr.Code,
			"message": aErr.Message,
			"status":  aErr.Status,
		}
		if aErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if aErr.Details != nil {
			errorObj["details"] = aErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
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
