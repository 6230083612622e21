package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"n8n-optimizer/src/core"
	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/workflows"
)

// OptimizationStarter runs optimization pipelines; workflows.Launcher implements it
type OptimizationStarter interface {
	Start(ctx context.Context, req workflows.OptimizationRequest) (string, error)
	Progress(ctx context.Context, workflowID string) (domain.Progress, error)
	Result(ctx context.Context, workflowID string) (workflows.OptimizationResult, error)
}

// Handler serves the HTTP API. A nil pipeline disables the /optimizations routes.
type Handler struct {
	deps     *core.Deps
	pipeline OptimizationStarter
	logger   *slog.Logger
	now      func() time.Time
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewRouter builds the echo instance with every route registered
func NewRouter(deps *core.Deps, pipeline OptimizationStarter, logger *slog.Logger) *echo.Echo {
	h := &Handler{deps: deps, pipeline: pipeline, logger: logger, now: time.Now}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))

	e.GET("/health", h.health)
	e.GET("/sample", h.sample)
	e.GET("/node-styles", h.nodeStyles)

	e.POST("/workflows/arrange", h.arrangeWorkflow)
	e.POST("/workflows/analyze", h.analyzeWorkflow)
	e.POST("/workflows/optimize", h.optimizeWorkflow)

	e.GET("/pipeline/steps", h.pipelineSteps)
	e.POST("/optimizations", h.startOptimization)
	e.GET("/optimizations/:id", h.optimizationProgress)
	e.GET("/optimizations/:id/result", h.optimizationResult)

	e.POST("/chat", h.sendChat)
	e.GET("/chat/:session", h.chatHistory)
	e.DELETE("/chat/:session", h.resetChat)

	e.GET("/articles", h.listArticles)
	e.GET("/articles/:slug", h.getArticle)

	return e
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{
		"error": message,
	})
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"pipeline": h.pipeline != nil,
	})
}

var _ OptimizationStarter = (*workflows.Launcher)(nil)
