package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.temporal.io/api/serviceerror"

	"n8n-optimizer/src/nodes/activities"
	"n8n-optimizer/src/validation"
	"n8n-optimizer/src/workflows"
)

// StartOptimizationRequest is the body of POST /optimizations
type StartOptimizationRequest struct {
	Workflow        json.RawMessage           `json:"workflow" validate:"required"`
	Pipeline        *workflows.PipelineConfig `json:"pipeline,omitempty"`
	ProgressDelayMS int64                     `json:"progress_delay_ms" validate:"gte=0,lte=60000"`
}

type pipelineStep struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

func (h *Handler) pipelineSteps(c echo.Context) error {
	names := activities.GetAllActivityNames()
	steps := make([]pipelineStep, 0, len(names))
	for _, name := range names {
		info, _ := activities.GetActivityInfo(name)
		step := pipelineStep{Name: name, Description: info.Options.Description}
		if info.Options.Schema != nil {
			schema, err := validation.ConvertStructToJSONSchema(info.Options.Schema)
			if err != nil {
				return errorJSON(c, http.StatusInternalServerError, err.Error())
			}
			step.Schema = schema
		}
		steps = append(steps, step)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"steps":            steps,
		"default_pipeline": workflows.BuildDefaultPipeline(),
	})
}

func (h *Handler) startOptimization(c echo.Context) error {
	if h.pipeline == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Optimization pipeline is not available")
	}

	var req StartOptimizationRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	// reject bad documents here instead of inside a workflow run
	if _, err := validation.ParseWorkflow(req.Workflow); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	workflowID, err := h.pipeline.Start(c.Request().Context(), workflows.OptimizationRequest{
		Document:      req.Workflow,
		Pipeline:      req.Pipeline,
		ProgressDelay: time.Duration(req.ProgressDelayMS) * time.Millisecond,
	})
	if err != nil {
		if errors.Is(err, workflows.ErrInvalidPipeline) {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Failed to start optimization", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to start optimization")
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"workflow_id": workflowID,
	})
}

func (h *Handler) optimizationProgress(c echo.Context) error {
	if h.pipeline == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Optimization pipeline is not available")
	}

	progress, err := h.pipeline.Progress(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.pipelineError(c, err)
	}
	return c.JSON(http.StatusOK, progress)
}

func (h *Handler) optimizationResult(c echo.Context) error {
	if h.pipeline == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Optimization pipeline is not available")
	}

	result, err := h.pipeline.Result(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.pipelineError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) pipelineError(c echo.Context, err error) error {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return errorJSON(c, http.StatusNotFound, "Optimization not found")
	}
	h.logger.Error("Optimization request failed", "workflow_id", c.Param("id"), "error", err)
	return errorJSON(c, http.StatusBadGateway, err.Error())
}
