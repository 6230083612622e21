package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spaolacci/murmur3"

	"n8n-optimizer/src/analyzer"
	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/layout"
	"n8n-optimizer/src/nodestyle"
	"n8n-optimizer/src/validation"
)

const (
	analysisCachePrefix = "analysis:"
	analysisCacheTTL    = time.Hour
	cacheHeader         = "X-Cache"
)

func (h *Handler) sample(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.SampleWorkflow())
}

func (h *Handler) nodeStyles(c echo.Context) error {
	return c.JSON(http.StatusOK, nodestyle.All())
}

// readWorkflow parses the request body; on failure it has already written the 400
func (h *Handler) readWorkflow(c echo.Context) (domain.Workflow, bool, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domain.Workflow{}, false, errorJSON(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}

	wf, err := validation.ParseWorkflow(body)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidDocument) {
			return domain.Workflow{}, false, errorJSON(c, http.StatusBadRequest, err.Error())
		}
		return domain.Workflow{}, false, errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return wf, true, nil
}

func (h *Handler) arrangeWorkflow(c echo.Context) error {
	wf, ok, err := h.readWorkflow(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, layout.Compute(wf))
}

func (h *Handler) analyzeWorkflow(c echo.Context) error {
	wf, ok, err := h.readWorkflow(c)
	if !ok {
		return err
	}

	ctx := c.Request().Context()
	key, err := analysisCacheKey(wf)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	var cached domain.Analysis
	found, err := h.deps.Store.Get(ctx, key, &cached)
	if err != nil {
		h.logger.Warn("Failed to read analysis cache", "key", key, "error", err)
	}
	if found {
		c.Response().Header().Set(cacheHeader, "hit")
		return c.JSON(http.StatusOK, cached)
	}

	analysis := analyzer.Analyze(wf)
	if err := h.deps.Store.Set(ctx, key, analysis, analysisCacheTTL); err != nil {
		h.logger.Warn("Failed to cache analysis", "key", key, "error", err)
	}
	c.Response().Header().Set(cacheHeader, "miss")
	return c.JSON(http.StatusOK, analysis)
}

func (h *Handler) optimizeWorkflow(c echo.Context) error {
	wf, ok, err := h.readWorkflow(c)
	if !ok {
		return err
	}

	optimized, err := analyzer.GenerateOptimized(wf, analyzer.Analyze(wf), h.now())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", analyzer.ExportFileName))
	return c.JSON(http.StatusOK, optimized)
}

// analysisCacheKey hashes the canonical encoding of the workflow.
// Re-encoding drops formatting and unknown fields, so equivalent uploads share a key.
func analysisCacheKey(wf domain.Workflow) (string, error) {
	canonical, err := json.Marshal(wf)
	if err != nil {
		return "", fmt.Errorf("encode workflow: %w", err)
	}
	hi, lo := murmur3.Sum128(canonical)
	return fmt.Sprintf("%s%016x%016x", analysisCachePrefix, hi, lo), nil
}
