package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"n8n-optimizer/src/services"
)

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required,max=64"`
	Message   string `json:"message" validate:"required,max=4000"`
}

func (h *Handler) sendChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	session := services.NewChatSession(ctx, req.SessionID, h.deps.Store, h.deps.Chat)
	reply := session.Send(ctx, req.Message)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reply":   reply,
		"history": session.History(),
	})
}

func (h *Handler) chatHistory(c echo.Context) error {
	ctx := c.Request().Context()
	session := services.NewChatSession(ctx, c.Param("session"), h.deps.Store, h.deps.Chat)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"history": session.History(),
	})
}

func (h *Handler) resetChat(c echo.Context) error {
	ctx := c.Request().Context()
	services.NewChatSession(ctx, c.Param("session"), h.deps.Store, h.deps.Chat).Reset(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listArticles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.deps.Articles.List(c.Request().Context()))
}

func (h *Handler) getArticle(c echo.Context) error {
	article, err := h.deps.Articles.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			return errorJSON(c, http.StatusNotFound, "Article not found")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, article)
}
