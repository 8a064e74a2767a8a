package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/internal/helpers"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyMiddleware checks the X-POS-API-KEY header against the bcrypt
// hash derived at startup. The plain key never lives past boot.
func APIKeyMiddleware(apiKeyHash []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-POS-API-KEY")
		if provided == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Missing X-POS-API-KEY header")
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword(apiKeyHash, []byte(provided)); err != nil {
			helpers.RespondWithError(c, http.StatusForbidden, "Invalid POS API key")
			c.Abort()
			return
		}

		c.Next()
	}
}
