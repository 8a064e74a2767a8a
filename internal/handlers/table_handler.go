package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/internal/helpers"
	"github.com/tavola/pos-api/internal/models"
	"gorm.io/gorm"
)

type TableRequest struct {
	MesaID string `json:"mesa_id" binding:"required"`
	Label  string `json:"label"`
	Seats  int    `json:"seats"`
}

func ListTables(c *gin.Context) {
	db, ok := getDB(c)
	if !ok {
		return
	}

	var tables []models.Table
	if err := db.Order("label").Find(&tables).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tables.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, tables)
}

func CreateTable(c *gin.Context) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "mesa_id is required")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}

	var existing models.Table
	err := db.First(&existing, "mesa_id = ?", req.MesaID).Error
	if err == nil {
		helpers.RespondWithError(c, http.StatusConflict, "Table with this mesa_id already exists.")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error creating table.")
		return
	}

	label := req.Label
	if label == "" {
		label = req.MesaID
	}
	seats := req.Seats
	if seats <= 0 {
		seats = 4
	}

	table := models.Table{
		MesaID: req.MesaID,
		Label:  label,
		Seats:  seats,
	}

	if err := db.Create(&table).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error creating table.")
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, table)
}
