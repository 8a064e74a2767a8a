package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/config"
	"github.com/tavola/pos-api/internal/helpers"
	"gorm.io/gorm"
)

func getDB(c *gin.Context) (*gorm.DB, bool) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db.(*gorm.DB), true
}

func getPosConfig(c *gin.Context) (*config.PosConfig, bool) {
	cfg, exists := c.Get("pos_config")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "POS configuration not found.")
		return nil, false
	}
	return cfg.(*config.PosConfig), true
}
