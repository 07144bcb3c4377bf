package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizverse/internal/app"
	"quizverse/internal/content"
)

// PlayerHandler serves the catalog and the attempt lifecycle over REST.
type PlayerHandler struct {
	player  *app.PlayerService
	content *content.Repository
}

func NewPlayerHandler(player *app.PlayerService, repo *content.Repository) *PlayerHandler {
	return &PlayerHandler{player: player, content: repo}
}

type startRequest struct {
	QuizID string `json:"quizId" validate:"required"`
}

type answerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Option     *int   `json:"option" validate:"required"`
}

type markRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
}

type gotoRequest struct {
	Index *int `json:"index" validate:"required"`
}

func (h *PlayerHandler) Catalog(c *gin.Context) {
	quizzes, err := h.player.Catalog(c.Request.Context(), identityOf(c), app.CatalogFilter{
		Search:     c.Query("search"),
		Difficulty: c.Query("difficulty"),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, quizzes)
}

func (h *PlayerHandler) Categories(c *gin.Context) {
	categories, err := h.content.Categories(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, categories)
}

func (h *PlayerHandler) Subcategories(c *gin.Context) {
	subs, err := h.content.Subcategories(c.Request.Context(), c.Query("categoryId"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, subs)
}

func (h *PlayerHandler) Start(c *gin.Context) {
	var req startRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.player.Start(c.Request.Context(), req.QuizID, identityOf(c))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusCreated, view)
}

func (h *PlayerHandler) View(c *gin.Context) {
	view, err := h.player.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, view)
}

func (h *PlayerHandler) Answer(c *gin.Context) {
	var req answerRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.player.SelectAnswer(c.Request.Context(), c.Param("id"), req.QuestionID, *req.Option)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, view)
}

func (h *PlayerHandler) Mark(c *gin.Context) {
	var req markRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.player.ToggleMark(c.Request.Context(), c.Param("id"), req.QuestionID)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, view)
}

func (h *PlayerHandler) GoTo(c *gin.Context) {
	var req gotoRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.player.GoTo(c.Request.Context(), c.Param("id"), *req.Index)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, view)
}

func (h *PlayerHandler) Next(c *gin.Context) {
	view, err := h.player.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, view)
}

func (h *PlayerHandler) Prev(c *gin.Context) {
	view, err := h.player.Prev(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, view)
}

func (h *PlayerHandler) Submit(c *gin.Context) {
	result, err := h.player.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

func (h *PlayerHandler) Exit(c *gin.Context) {
	if err := h.player.Exit(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
