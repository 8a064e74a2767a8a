package helpers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tavola/pos-api/internal/models"
)

// ReceiptClaims is the signed content of a receipt QR for a fully paid
// ticket.
type ReceiptClaims struct {
	TicketID string `json:"ticket_id"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
	PaidAt   int64  `json:"paid_at"`
	jwt.RegisteredClaims
}

func SignReceiptToken(secret []byte, ticket *models.Ticket) (string, error) {
	var paidAt int64
	if ticket.ClosedAt != nil {
		paidAt = ticket.ClosedAt.Unix()
	}

	claims := ReceiptClaims{
		TicketID: ticket.ID.String(),
		Total:    ticket.Total,
		Currency: ticket.Currency,
		PaidAt:   paidAt,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "pos-api",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseReceiptToken(secret []byte, tokenString string) (*ReceiptClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ReceiptClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ReceiptClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid receipt token")
	}
	return claims, nil
}
