package normalize

import (
	"testing"
	"time"

	"github.com/vanshika/bunqdash/internal/domain"
)

func bankEnvelope(acc domain.MonetaryAccountBank) domain.MonetaryAccountEnvelope {
	return domain.MonetaryAccountEnvelope{MonetaryAccountBank: &acc}
}

func TestAccount_PrefersIBANAlias(t *testing.T) {
	env := bankEnvelope(domain.MonetaryAccountBank{
		ID:          1,
		Description: "Main Account",
		Balance:     &domain.Balance{Value: "2458.32", Currency: "EUR"},
		Alias: []domain.Alias{
			{Type: "EMAIL", Value: "jane@example.com", Name: "Jane"},
			{Type: "IBAN", Value: "NL00BUNQ0000000000", Name: "Jane Doe"},
		},
	})

	got := Account(env)
	if got.IBAN != "NL00BUNQ0000000000" {
		t.Fatalf("expected IBAN alias value, got %q", got.IBAN)
	}
	if got.DisplayName != "Jane Doe" {
		t.Fatalf("expected IBAN alias name, got %q", got.DisplayName)
	}
	if got.Balance != "2458.32" || got.Currency != "EUR" {
		t.Fatalf("unexpected balance %s %s", got.Balance, got.Currency)
	}
	if got.Color != Color(1) {
		t.Fatalf("expected color %s, got %s", Color(1), got.Color)
	}
}

func TestAccount_FirstAliasWithoutIBAN(t *testing.T) {
	env := bankEnvelope(domain.MonetaryAccountBank{
		ID:          4,
		Description: "Travel",
		Alias: []domain.Alias{
			{Type: "PHONE_NUMBER", Value: "+31600000000", Name: "Phone Jane"},
			{Type: "EMAIL", Value: "jane@example.com", Name: "Mail Jane"},
		},
	})

	got := Account(env)
	if got.IBAN != "+31600000000" || got.DisplayName != "Phone Jane" {
		t.Fatalf("expected first alias, got iban=%q name=%q", got.IBAN, got.DisplayName)
	}
}

func TestAccount_NoAliases(t *testing.T) {
	cases := []struct {
		name        string
		description string
		wantName    string
		wantDesc    string
	}{
		{name: "with description", description: "Savings", wantName: "Savings", wantDesc: "Savings"},
		{name: "without description", description: "", wantName: "Account", wantDesc: "Account"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Account(bankEnvelope(domain.MonetaryAccountBank{ID: 2, Description: tc.description}))
			if got.IBAN != "" {
				t.Fatalf("expected empty IBAN, got %q", got.IBAN)
			}
			if got.DisplayName != tc.wantName {
				t.Fatalf("expected display name %q, got %q", tc.wantName, got.DisplayName)
			}
			if got.Description != tc.wantDesc {
				t.Fatalf("expected description %q, got %q", tc.wantDesc, got.Description)
			}
		})
	}
}

func TestAccount_AliasWithoutNameFallsBackToDescription(t *testing.T) {
	got := Account(bankEnvelope(domain.MonetaryAccountBank{
		ID:          3,
		Description: "Joint Account",
		Alias:       []domain.Alias{{Type: "IBAN", Value: "NL00BUNQ0000000002"}},
	}))
	if got.DisplayName != "Joint Account" {
		t.Fatalf("expected description as display name, got %q", got.DisplayName)
	}
}

func TestAccount_MissingBankAccount(t *testing.T) {
	got := Account(domain.MonetaryAccountEnvelope{})
	want := domain.Account{
		ID:          0,
		Description: "Unknown Account",
		Balance:     "0",
		Currency:    "EUR",
		DisplayName: "Unknown Account",
		Color:       "#CCCCCC",
	}
	if got != want {
		t.Fatalf("expected placeholder %+v, got %+v", want, got)
	}
}

func TestAccount_BalanceAndCurrencyGaps(t *testing.T) {
	cases := []struct {
		name         string
		acc          domain.MonetaryAccountBank
		wantBalance  string
		wantCurrency string
	}{
		{name: "no balance", acc: domain.MonetaryAccountBank{ID: 1}, wantBalance: "0", wantCurrency: "EUR"},
		{name: "garbage value", acc: domain.MonetaryAccountBank{ID: 1, Balance: &domain.Balance{Value: "12,50", Currency: "USD"}}, wantBalance: "0", wantCurrency: "USD"},
		{name: "account currency", acc: domain.MonetaryAccountBank{ID: 1, Currency: "GBP", Balance: &domain.Balance{Value: "-3.10"}}, wantBalance: "-3.10", wantCurrency: "GBP"},
		{name: "no currency anywhere", acc: domain.MonetaryAccountBank{ID: 1, Balance: &domain.Balance{Value: "7"}}, wantBalance: "7", wantCurrency: "EUR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Account(bankEnvelope(tc.acc))
			if got.Balance != tc.wantBalance || got.Currency != tc.wantCurrency {
				t.Fatalf("expected %s %s, got %s %s", tc.wantBalance, tc.wantCurrency, got.Balance, got.Currency)
			}
		})
	}
}

func TestColor_Periodic(t *testing.T) {
	for id := int64(0); id < 20; id++ {
		for k := int64(0); k < 4; k++ {
			if Color(id) != Color(id+int64(PaletteSize)*k) {
				t.Fatalf("color(%d) != color(%d)", id, id+int64(PaletteSize)*k)
			}
		}
	}
	if Color(-1) != Color(7) {
		t.Fatalf("expected negative ids to wrap")
	}
	if Color(1) == Color(2) {
		t.Fatalf("expected adjacent ids to differ")
	}
}

func TestTransaction_Flatten(t *testing.T) {
	env := domain.PaymentEnvelope{Payment: &domain.Payment{
		ID:                1003,
		Amount:            domain.Balance{Value: "-15.00", Currency: "EUR"},
		CounterpartyAlias: domain.CounterpartyAlias{DisplayName: "Coffee Shop"},
		Description:       "Payment to Coffee Shop",
		Created:           "2024-03-01T10:30:00Z",
	}}

	got := Transaction(env)
	if got.ID != 1003 || got.Amount != "-15.00" || got.CounterpartyName != "Coffee Shop" {
		t.Fatalf("unexpected transaction %+v", got)
	}
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	if !got.CreatedAt.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got.CreatedAt)
	}
	if got.Incoming() {
		t.Fatalf("expected outgoing")
	}
}

func TestTransaction_MissingPayment(t *testing.T) {
	got := Transaction(domain.PaymentEnvelope{})
	if got.ID != 0 || got.Amount != "0" || got.Currency != "EUR" || got.CounterpartyName != "Unknown" {
		t.Fatalf("unexpected placeholder %+v", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	bunq := ParseTimestamp("2024-03-01 10:30:00.123456")
	if bunq.Year() != 2024 || bunq.Nanosecond() != 123456000 {
		t.Fatalf("unexpected bunq timestamp %s", bunq)
	}
	if !ParseTimestamp("yesterday").IsZero() {
		t.Fatalf("expected zero time for garbage")
	}
	if !ParseTimestamp("").IsZero() {
		t.Fatalf("expected zero time for empty")
	}
}

func TestIsIncoming(t *testing.T) {
	cases := map[string]bool{
		"200.00": true,
		"-15.00": false,
		"0":      false,
		"0.00":   false,
		"abc":    false,
	}
	for amount, want := range cases {
		if got := domain.IsIncoming(amount); got != want {
			t.Errorf("IsIncoming(%q) = %v, want %v", amount, got, want)
		}
	}
}
