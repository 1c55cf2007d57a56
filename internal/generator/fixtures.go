package generator

import "github.com/vanshika/bunqdash/internal/domain"

// Fixtures is the canned demo dataset. It is built once and served unchanged for the
// lifetime of the data source holding it.
type Fixtures struct {
	User         domain.UserEnvelope                `json:"user"`
	Accounts     []domain.MonetaryAccountEnvelope   `json:"accounts"`
	Transactions map[int64][]domain.PaymentEnvelope `json:"transactions"`
}

// TransactionCounts is the number of generated payments per demo account id.
var TransactionCounts = map[int64]int{
	1: 30,
	2: 15,
	3: 10,
}

// NewFixtures builds the demo user, its three accounts and their payments.
func NewFixtures(g *Generator) Fixtures {
	f := Fixtures{
		User: domain.UserEnvelope{UserPerson: &domain.UserPerson{
			ID:          1,
			DisplayName: "Test User",
			FirstName:   "Test",
			LastName:    "User",
			Email:       "test@example.com",
		}},
		Accounts: []domain.MonetaryAccountEnvelope{
			demoAccount(1, "Main Account", "2458.32", "NL00BUNQ0000000000", "Test User"),
			demoAccount(2, "Savings", "12789.54", "NL00BUNQ0000000001", "Test User"),
			demoAccount(3, "Joint Account", "543.21", "NL00BUNQ0000000002", "Test User & Partner"),
		},
		Transactions: make(map[int64][]domain.PaymentEnvelope, len(TransactionCounts)),
	}
	// Generate in id order so a seeded generator always yields the same dataset.
	for _, acc := range f.Accounts {
		id := acc.MonetaryAccountBank.ID
		f.Transactions[id] = g.Transactions(TransactionCounts[id], id)
	}
	return f
}

// Account looks up a demo bank account by id.
func (f Fixtures) Account(id int64) (domain.MonetaryAccountBank, bool) {
	for _, env := range f.Accounts {
		if env.MonetaryAccountBank != nil && env.MonetaryAccountBank.ID == id {
			return *env.MonetaryAccountBank, true
		}
	}
	return domain.MonetaryAccountBank{}, false
}

func demoAccount(id int64, description, balance, iban, holder string) domain.MonetaryAccountEnvelope {
	return domain.MonetaryAccountEnvelope{MonetaryAccountBank: &domain.MonetaryAccountBank{
		ID:          id,
		Description: description,
		Currency:    defaultCurrency,
		Status:      "ACTIVE",
		Balance:     &domain.Balance{Value: balance, Currency: defaultCurrency},
		Alias: []domain.Alias{
			{Type: domain.AliasTypeIBAN, Value: iban, Name: holder},
		},
	}}
}
