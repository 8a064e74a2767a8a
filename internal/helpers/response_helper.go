package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/internal/billing"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Success: true, Data: data})
}

func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{Success: false, Error: message})
}

func RespondWithDomainError(c *gin.Context, err error) {
	var billingErr *billing.Error
	if errors.As(err, &billingErr) {
		RespondWithError(c, httpStatusFor(billingErr.Kind), billingErr.Message)
		return
	}
	RespondWithError(c, http.StatusInternalServerError, "Unexpected error")
}

func httpStatusFor(kind billing.Kind) int {
	switch kind {
	case billing.NotFound:
		return http.StatusNotFound
	case billing.InvalidArgument:
		return http.StatusBadRequest
	case billing.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
