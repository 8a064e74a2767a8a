package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/tavola/pos-api/internal/billing"
	"github.com/tavola/pos-api/internal/helpers"
	"github.com/tavola/pos-api/internal/services"
)

// GetTicketReceipt renders a QR code for a fully paid ticket. The QR
// payload is a signed token so a receipt cannot be forged for an unpaid
// ticket.
func GetTicketReceipt(c *gin.Context) {
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

	if ticket.Status != billing.TicketPaid {
		helpers.RespondWithError(c, http.StatusConflict, "Ticket is not fully paid")
		return
	}

	secret := os.Getenv("RECEIPT_SECRET")
	if secret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Receipt signing not configured")
		return
	}

	token, err := helpers.SignReceiptToken([]byte(secret), ticket)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to sign receipt")
		return
	}

	qrImage, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

type VerifyReceiptRequest struct {
	Token string `json:"token" binding:"required"`
}

func VerifyReceipt(c *gin.Context) {
	var req VerifyReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "token is required")
		return
	}

	secret := os.Getenv("RECEIPT_SECRET")
	if secret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Receipt signing not configured")
		return
	}

	claims, err := helpers.ParseReceiptToken([]byte(secret), req.Token)
	if err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid receipt token")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"ticket_id": claims.TicketID,
		"total":     claims.Total,
		"currency":  claims.Currency,
		"paid_at":   claims.PaidAt,
	})
}
