package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/internal/helpers"
)

func Health(c *gin.Context) {
	helpers.RespondWithData(c, http.StatusOK, gin.H{"status": "ok"})
}

func GetCapabilities(c *gin.Context) {
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"supportsPartialPayments": true,
		"supportsItemLocking":     false,
		"supportsWebhooks":        false,
		"supportsRefunds":         false,
		"currency":                []string{cfg.Currency},
	})
}
