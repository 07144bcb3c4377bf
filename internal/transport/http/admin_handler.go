package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizverse/internal/content"
	"quizverse/internal/domain"
	"quizverse/internal/identity"
)

// QuizInvalidator drops cached copies of an edited quiz.
type QuizInvalidator interface {
	Invalidate(ctx context.Context, quizID string) error
}

// AdminHandler serves admin login and content management.
type AdminHandler struct {
	auth    *identity.AdminAuthenticator
	content *content.Repository
	cache   QuizInvalidator
	log     zerolog.Logger
}

func NewAdminHandler(auth *identity.AdminAuthenticator, repo *content.Repository, cache QuizInvalidator, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		auth:    auth,
		content: repo,
		cache:   cache,
		log:     log.With().Str("component", "admin").Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.log.Warn().Str("email", req.Email).Msg("admin login failed")
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, loginResponse{Token: token})
}

func (h *AdminHandler) ListCategories(c *gin.Context) {
	categories, err := h.content.Categories(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, categories)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req domain.Category
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body", nil)
		return
	}
	category, err := h.content.AddCategory(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusCreated, category)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.content.RemoveCategory(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListSubcategories(c *gin.Context) {
	subs, err := h.content.Subcategories(c.Request.Context(), c.Query("categoryId"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, subs)
}

func (h *AdminHandler) CreateSubcategory(c *gin.Context) {
	var req domain.Subcategory
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body", nil)
		return
	}
	sub, err := h.content.AddSubcategory(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusCreated, sub)
}

func (h *AdminHandler) DeleteSubcategory(c *gin.Context) {
	if err := h.content.RemoveSubcategory(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.content.Quizzes(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, quizzes)
}

func (h *AdminHandler) CreateQuiz(c *gin.Context) {
	var req domain.Quiz
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body", nil)
		return
	}
	req.ID = ""
	h.saveQuiz(c, req, http.StatusCreated)
}

func (h *AdminHandler) UpdateQuiz(c *gin.Context) {
	var req domain.Quiz
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body", nil)
		return
	}
	if _, err := h.content.LoadQuiz(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	req.ID = c.Param("id")
	h.saveQuiz(c, req, http.StatusOK)
}

func (h *AdminHandler) DeleteQuiz(c *gin.Context) {
	id := c.Param("id")
	if err := h.content.RemoveQuiz(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) saveQuiz(c *gin.Context, quiz domain.Quiz, status int) {
	saved, err := h.content.SaveQuiz(c.Request.Context(), quiz)
	if err != nil {
		failErr(c, err)
		return
	}
	h.invalidate(c.Request.Context(), saved.ID)
	h.log.Info().Str("quiz_id", saved.ID).Bool("published", saved.Published).Msg("quiz saved")
	success(c, status, saved)
}

func (h *AdminHandler) invalidate(ctx context.Context, quizID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, quizID); err != nil {
		h.log.Warn().Err(err).Str("quiz_id", quizID).Msg("quiz cache invalidation failed")
	}
}
