package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"flowdeck/internal/auth"
	"flowdeck/internal/errors"
	"flowdeck/internal/model"
	"flowdeck/internal/repository"
	"flowdeck/internal/service"
)

// WorkflowHandler handles workflow endpoints. Every route behind it requires
// a verified identity.
type WorkflowHandler struct {
	workflowService service.WorkflowService
	logger          *zap.Logger
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(workflowService service.WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService, logger: logger}
}

// StepRequest represents one step in a workflow payload.
type StepRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

// WorkflowRequest represents a workflow create or replace payload.
type WorkflowRequest struct {
	Name        string                 `json:"name" validate:"required,max=100"`
	Description string                 `json:"description" validate:"omitempty,max=500"`
	Status      string                 `json:"status" validate:"omitempty,oneof=draft active inactive"`
	Steps       []StepRequest          `json:"steps" validate:"omitempty,dive"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func (r *WorkflowRequest) toInput() service.WorkflowInput {
	steps := make(model.Steps, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, model.Step{
			Name:        s.Name,
			Description: s.Description,
			Order:       s.Order,
			Status:      model.StepStatus(s.Status),
		})
	}
	return service.WorkflowInput{
		Name:        r.Name,
		Description: r.Description,
		Status:      model.WorkflowStatus(r.Status),
		Steps:       steps,
		Metadata:    r.Metadata,
	}
}

// bindWorkflowRequest decodes the body, rejecting an absent or keyless payload
// before field validation runs.
func bindWorkflowRequest(c echo.Context, req *WorkflowRequest) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return validationError("invalid request body")
	}

	var raw map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &raw) != nil {
		return validationError(errors.ErrEmptyBody.Error())
	}
	if len(raw) == 0 {
		return validationError(errors.ErrEmptyBody.Error())
	}

	if err := json.Unmarshal(body, req); err != nil {
		return validationError("invalid request body")
	}
	return c.Validate(req)
}

func identityOrDenied(c echo.Context) (auth.Identity, error) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "access denied",
			Code:  "ACCESS_DENIED",
		})
	}
	return identity, nil
}

// Create godoc
// @Summary Create a workflow
// @Tags workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WorkflowRequest true "Workflow data"
// @Success 201 {object} model.Workflow
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /workflows [post]
func (h *WorkflowHandler) Create(c echo.Context) error {
	identity, err := identityOrDenied(c)
	if err != nil {
		return err
	}

	var req WorkflowRequest
	if err := bindWorkflowRequest(c, &req); err != nil {
		if _, ok := err.(*echo.HTTPError); ok {
			return err
		}
		return validationError(err.Error())
	}

	workflow, err := h.workflowService.Create(c.Request().Context(), identity.ID, req.toInput())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, workflow)
}

// List godoc
// @Summary List the caller's workflows
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-indexed)"
// @Param limit query int false "Page size (default 10)"
// @Param search query string false "Substring match on name or description"
// @Param status query string false "Exact status filter"
// @Success 200 {object} service.ListResult
// @Failure 401 {object} errors.ErrorResponse
// @Router /workflows [get]
func (h *WorkflowHandler) List(c echo.Context) error {
	identity, err := identityOrDenied(c)
	if err != nil {
		return err
	}

	filter := repository.ListFilter{
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
		Search: c.QueryParam("search"),
		Status: model.WorkflowStatus(c.QueryParam("status")),
	}

	result, err := h.workflowService.List(c.Request().Context(), identity.ID, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary Get one of the caller's workflows
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Success 200 {object} model.Workflow
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) Get(c echo.Context) error {
	identity, err := identityOrDenied(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, errors.ErrWorkflowNotFound)
	}

	workflow, err := h.workflowService.Get(c.Request().Context(), identity.ID, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, workflow)
}

// Replace godoc
// @Summary Replace one of the caller's workflows
// @Tags workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Param request body WorkflowRequest true "Full workflow data"
// @Success 200 {object} model.Workflow
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /workflows/{id} [put]
func (h *WorkflowHandler) Replace(c echo.Context) error {
	identity, err := identityOrDenied(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, errors.ErrWorkflowNotFound)
	}

	var req WorkflowRequest
	if err := bindWorkflowRequest(c, &req); err != nil {
		if _, ok := err.(*echo.HTTPError); ok {
			return err
		}
		return validationError(err.Error())
	}

	workflow, err := h.workflowService.Replace(c.Request().Context(), identity.ID, id, req.toInput())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, workflow)
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
