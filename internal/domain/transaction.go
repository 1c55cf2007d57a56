package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the flattened view of a payment consumed by the dashboard.
type Transaction struct {
	ID               int64     `json:"id"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	CounterpartyName string    `json:"counterpartyName"`
	Description      string    `json:"description"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Incoming reports whether the amount is strictly positive. Unparseable amounts count as outgoing.
func (t Transaction) Incoming() bool {
	return IsIncoming(t.Amount)
}

// IsIncoming classifies a decimal amount string by its sign.
func IsIncoming(amount string) bool {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return false
	}
	return d.IsPositive()
}
