package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tavola/pos-api/internal/billing"
	"github.com/tavola/pos-api/internal/helpers"
	"github.com/tavola/pos-api/internal/services"
)

type CreateTicketRequest struct {
	TableID uuid.UUID `json:"tableId" binding:"required"`
}

type AddItemRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity" binding:"required"`
	Notes     string `json:"notes"`
}

type AddItemsRequest struct {
	Items []AddItemRequest `json:"items" binding:"required,min=1,dive"`
}

func CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "tableId is required")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	ticket, err := services.NewTicketService(db, *cfg).Create(req.TableID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, ticket)
}

func ListTickets(c *gin.Context) {
	db, ok := getDB(c)
	if !ok {
		return
	}
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	var tableID *uuid.UUID
	if raw := c.Query("tableId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid tableId")
			return
		}
		tableID = &parsed
	}

	tickets, err := services.NewTicketService(db, *cfg).List(billing.TicketStatus(c.Query("status")), tableID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusOK, tickets)
}

func GetTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	ticket, err := services.NewTicketService(db, *cfg).Get(ticketID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusOK, ticket)
}

func CloseTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	ticket, err := services.NewTicketService(db, *cfg).Cancel(ticketID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusOK, ticket)
}

func ListTicketItems(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	items, err := services.NewTicketService(db, *cfg).Items(ticketID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusOK, items)
}

func AddTicketItems(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "items array is required")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}
	cfg, ok := getPosConfig(c)
	if !ok {
		return
	}

	newItems := make([]services.NewItem, 0, len(req.Items))
	for _, item := range req.Items {
		newItems = append(newItems, services.NewItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}

	added, err := services.NewTicketService(db, *cfg).AddItems(ticketID, newItems)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, added)
}
