package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tavola/pos-api/internal/helpers"
	"github.com/tavola/pos-api/internal/services"
)

type PaymentItemRequest struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	Quantity int       `json:"quantity" binding:"required"`
}

type CreatePaymentRequest struct {
	TicketID          uuid.UUID            `json:"ticketId" binding:"required"`
	Items             []PaymentItemRequest `json:"items" binding:"required,min=1,dive"`
	Amount            int64                `json:"amount" binding:"required"`
	Method            string               `json:"method" binding:"required"`
	ExternalProvider  string               `json:"externalProvider" binding:"required"`
	ExternalPaymentID string               `json:"externalPaymentId" binding:"required"`
}

func SubmitPayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
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

	allocations := make([]services.Allocation, 0, len(req.Items))
	for _, item := range req.Items {
		allocations = append(allocations, services.Allocation{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		})
	}

	payment, err := services.NewPaymentService(db, *cfg).Submit(services.PaymentRequest{
		TicketID:          req.TicketID,
		Items:             allocations,
		Amount:            req.Amount,
		Method:            req.Method,
		ExternalProvider:  req.ExternalProvider,
		ExternalPaymentID: req.ExternalPaymentID,
	})
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, payment)
}

func ListPayments(c *gin.Context) {
	raw := c.Query("ticketId")
	if raw == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "ticketId query parameter is required")
		return
	}
	ticketID, err := uuid.Parse(raw)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticketId")
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

	payments, err := services.NewPaymentService(db, *cfg).ListByTicket(ticketID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusOK, payments)
}
