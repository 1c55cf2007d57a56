// Package normalize maps raw bunq envelopes onto the flat view-models rendered by the dashboard.
// Missing or malformed fields never produce errors; they degrade to well-defined placeholders.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bunqdash/internal/domain"
)

const (
	DefaultCurrency         = "EUR"
	ZeroAmount              = "0"
	PlaceholderColor        = "#CCCCCC"
	placeholderAccount      = "Unknown Account"
	fallbackAccountName     = "Account"
	placeholderCounterparty = "Unknown"
	bunqTimestampLayout     = "2006-01-02 15:04:05.000000"
)

// palette is indexed by account id modulo its length.
var palette = [...]string{
	"#FF7819",
	"#2E86DE",
	"#10AC84",
	"#EE5253",
	"#8E44AD",
	"#F368E0",
	"#0ABDE3",
	"#FECA57",
}

// PaletteSize is the number of distinct account colors.
const PaletteSize = len(palette)

// Color returns the palette entry for an account id.
func Color(id int64) string {
	idx := id % int64(PaletteSize)
	if idx < 0 {
		idx += int64(PaletteSize)
	}
	return palette[idx]
}

// PlaceholderAccount is returned for envelopes without a bank account.
func PlaceholderAccount() domain.Account {
	return domain.Account{
		ID:          0,
		Description: placeholderAccount,
		Balance:     ZeroAmount,
		Currency:    DefaultCurrency,
		IBAN:        "",
		DisplayName: placeholderAccount,
		Color:       PlaceholderColor,
	}
}

// Account flattens a monetary account envelope.
func Account(env domain.MonetaryAccountEnvelope) domain.Account {
	acc := env.MonetaryAccountBank
	if acc == nil {
		return PlaceholderAccount()
	}

	alias := primaryAlias(acc.Alias)
	description := strings.TrimSpace(acc.Description)

	displayName := fallbackAccountName
	switch {
	case alias != nil && alias.Name != "":
		displayName = alias.Name
	case description != "":
		displayName = description
	}

	iban := ""
	if alias != nil {
		iban = alias.Value
	}

	if description == "" {
		description = fallbackAccountName
	}

	balance, currency := ZeroAmount, ""
	if acc.Balance != nil {
		balance = Amount(acc.Balance.Value)
		currency = acc.Balance.Currency
	}
	if currency == "" {
		currency = acc.Currency
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	return domain.Account{
		ID:          acc.ID,
		Description: description,
		Balance:     balance,
		Currency:    currency,
		IBAN:        iban,
		DisplayName: displayName,
		Color:       Color(acc.ID),
	}
}

// Accounts maps every envelope, preserving order.
func Accounts(envs []domain.MonetaryAccountEnvelope) []domain.Account {
	out := make([]domain.Account, 0, len(envs))
	for _, env := range envs {
		out = append(out, Account(env))
	}
	return out
}

// primaryAlias prefers the IBAN alias and falls back to the first one.
func primaryAlias(aliases []domain.Alias) *domain.Alias {
	for i := range aliases {
		if aliases[i].Type == domain.AliasTypeIBAN {
			return &aliases[i]
		}
	}
	if len(aliases) > 0 {
		return &aliases[0]
	}
	return nil
}

// Amount returns value unchanged when it is a valid decimal, otherwise "0".
func Amount(value string) string {
	value = strings.TrimSpace(value)
	if _, err := decimal.NewFromString(value); err != nil {
		return ZeroAmount
	}
	return value
}

// Transaction flattens a payment envelope. Amount and currency are passed through untouched.
func Transaction(env domain.PaymentEnvelope) domain.Transaction {
	p := env.Payment
	if p == nil {
		return domain.Transaction{
			Amount:           ZeroAmount,
			Currency:         DefaultCurrency,
			CounterpartyName: placeholderCounterparty,
		}
	}
	return domain.Transaction{
		ID:               p.ID,
		Amount:           p.Amount.Value,
		Currency:         p.Amount.Currency,
		CounterpartyName: p.CounterpartyAlias.DisplayName,
		Description:      p.Description,
		CreatedAt:        ParseTimestamp(p.Created),
	}
}

// Transactions maps every envelope, preserving order.
func Transactions(envs []domain.PaymentEnvelope) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(envs))
	for _, env := range envs {
		out = append(out, Transaction(env))
	}
	return out
}

// ParseTimestamp accepts RFC 3339 and bunq's own layout; anything else yields the zero time.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(bunqTimestampLayout, value); err == nil {
		return t
	}
	return time.Time{}
}
