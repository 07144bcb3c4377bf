package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizverse/internal/domain"
	"quizverse/internal/validator"
)

// ErrCode is a stable, machine-readable error identifier.
type ErrCode string

const (
	ErrCodeAttemptNotFound    ErrCode = "ATTEMPT_NOT_FOUND"
	ErrCodeQuizNotFound       ErrCode = "QUIZ_NOT_FOUND"
	ErrCodeQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrCodeCategoryNotFound   ErrCode = "CATEGORY_NOT_FOUND"
	ErrCodeNotFound           ErrCode = "NOT_FOUND"
	ErrCodeOptionOutOfRange   ErrCode = "OPTION_OUT_OF_RANGE"
	ErrCodeInvalidQuiz        ErrCode = "INVALID_QUIZ"
	ErrCodeSignupRequired     ErrCode = "SIGNUP_REQUIRED"
	ErrCodeTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrCodeInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrCodeAdminOnly          ErrCode = "ADMIN_ONLY"
	ErrCodeValidation         ErrCode = "VALIDATION_FAILED"
	ErrCodeBadRequest         ErrCode = "BAD_REQUEST"
	ErrCodeInternal           ErrCode = "INTERNAL_ERROR"
)

// Response is the API envelope: data on success, error otherwise.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Data: data})
}

func fail(c *gin.Context, status int, code ErrCode, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, Response{Error: &ErrorBody{Code: code, Message: message, Fields: fields}})
}

// failErr maps domain sentinels onto HTTP statuses.
func failErr(c *gin.Context, err error) {
	status, code := classify(err)
	var fields map[string]string
	if code == ErrCodeValidation {
		fields = validator.TranslateErrors(err)
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal error"
	}
	fail(c, status, code, message, fields)
}

func classify(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound, ErrCodeAttemptNotFound
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, ErrCodeQuizNotFound
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, ErrCodeQuestionNotFound
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, ErrCodeCategoryNotFound
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrOptionOutOfRange):
		return http.StatusBadRequest, ErrCodeOptionOutOfRange
	case errors.Is(err, domain.ErrEmptyQuiz), errors.Is(err, domain.ErrInvalidQuiz):
		return http.StatusUnprocessableEntity, ErrCodeInvalidQuiz
	case errors.Is(err, domain.ErrSignupRequired):
		return http.StatusForbidden, ErrCodeSignupRequired
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, ErrCodeTokenInvalid
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials
	case validator.IsValidationError(err):
		return http.StatusUnprocessableEntity, ErrCodeValidation
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// bindJSON decodes and validates a request body, writing the error response itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body", validator.TranslateErrors(err))
		return false
	}
	if err := validator.Struct(req); err != nil {
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "validation failed", validator.TranslateErrors(err))
		return false
	}
	return true
}
