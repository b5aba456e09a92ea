package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/prompts"
	"github.com/ilkoid/promptlab/pkg/utils"
)

// RunPromptRequest - тело POST /api/runPrompt.
// Содержимое промпта отправляется как есть: подстановку делает клиент.
type RunPromptRequest struct {
	ActivePrompt *models.Prompt `json:"activePrompt"`
	Model        string         `json:"model"`
	Instructions string         `json:"instructions"`
}

// RunPromptResponse - ответ POST /api/runPrompt.
type RunPromptResponse struct {
	Output       *string         `json:"output"`
	Error        *string         `json:"error"`
	FullResponse json.RawMessage `json:"fullResponse,omitempty"`
}

// RunResponse - ответ POST /api/prompts/:id/run.
type RunResponse struct {
	Output     string               `json:"output"`
	Display    prompt.DisplayResult `json:"display"`
	Model      string               `json:"model"`
	HistoryID  int64                `json:"historyId,omitempty"`
	HistoryErr string               `json:"historyError,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func strPtr(s string) *string { return &s }

// runPrompt - ошибки модели возвращаются в поле error со статусом 200,
// неразбираемое тело - 500 с output: null.
func (s *Server) runPrompt(c echo.Context) error {
	var req RunPromptRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusInternalServerError, RunPromptResponse{Error: strPtr(err.Error())})
	}
	if req.ActivePrompt == nil {
		return c.JSON(http.StatusInternalServerError, RunPromptResponse{Error: strPtr("activePrompt is required")})
	}

	output, raw, err := s.state.Runner.RunRaw(c.Request().Context(),
		req.ActivePrompt.Content, req.Model, req.Instructions, req.ActivePrompt.IsJSONOutput)
	if err != nil {
		if errors.Is(err, app.ErrNoOutput) {
			return c.JSON(http.StatusOK, RunPromptResponse{})
		}
		utils.Error("runPrompt failed", "model", req.Model, "error", err)
		return c.JSON(http.StatusOK, RunPromptResponse{Error: strPtr(err.Error())})
	}

	return c.JSON(http.StatusOK, RunPromptResponse{Output: strPtr(output), FullResponse: raw})
}

func (s *Server) listModels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.state.Library.Options())
}

func (s *Server) listPrompts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.state.Library.Workspace())
}

func (s *Server) promptHistory(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.state.Library.Get(id); err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}

	entries := []history.Entry{}
	if s.state.History != nil {
		found, err := history.ForPrompt(c.Request().Context(), s.state.History, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		entries = append(entries, found...)
	}

	return c.JSON(http.StatusOK, entries)
}

// runStoredPrompt запускает промпт по id с записью в историю.
// Активный промпт библиотеки не меняется.
func (s *Server) runStoredPrompt(c echo.Context) error {
	res, err := s.state.Runner.RunPrompt(c.Request().Context(), c.Param("id"))
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, prompts.ErrPromptNotFound):
			status = http.StatusNotFound
		case errors.Is(err, app.ErrEmptyPrompt):
			status = http.StatusBadRequest
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}

	resp := RunResponse{
		Output:  res.Output,
		Display: res.Display,
		Model:   res.Model,
	}
	if res.Entry != nil {
		resp.HistoryID = res.Entry.ID
	}
	if res.HistoryErr != nil {
		resp.HistoryErr = res.HistoryErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
