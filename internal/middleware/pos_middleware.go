package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/config"
	"gorm.io/gorm"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func PosConfigMiddleware(cfg *config.PosConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("pos_config", cfg)
		c.Next()
	}
}
