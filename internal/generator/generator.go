package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bunqdash/internal/domain"
)

const (
	defaultCurrency = "EUR"
	salary          = "Salary"
	createdLayout   = "2006-01-02T15:04:05.000Z07:00"
)

var counterparties = []string{
	"Supermarket", "Coffee Shop", "Gas Station", "Online Store",
	"Restaurant", "Mobile Provider", "Utility Bill", salary,
	"Rent", "Insurance", "Streaming Service", "Public Transport",
}

// Counterparties returns a copy of the name pool payments are drawn from.
func Counterparties() []string {
	return append([]string(nil), counterparties...)
}

// Generator produces synthetic bunq payments. Content is random, shape is fixed.
type Generator struct {
	cfg  Config
	rand *rand.Rand
	now  func() time.Time
}

// New returns a configured Generator. An IncomingChance outside [0, 1] falls back to the default
// and a zero seed picks a time-based one.
func New(cfg Config) *Generator {
	if cfg.IncomingChance < 0 || cfg.IncomingChance > 1 {
		cfg.IncomingChance = DefaultConfig().IncomingChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
		now:  time.Now,
	}
}

// WithRand replaces the random source.
func (g *Generator) WithRand(r *rand.Rand) *Generator {
	if r != nil {
		g.rand = r
	}
	return g
}

// WithClock overrides the time source used to date payments.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

// Transactions synthesises count payments for accountID. Payment i is dated i days before now
// and carries id accountID*1000+i.
func (g *Generator) Transactions(count int, accountID int64) []domain.PaymentEnvelope {
	if count <= 0 {
		return []domain.PaymentEnvelope{}
	}
	now := g.now().UTC()
	out := make([]domain.PaymentEnvelope, 0, count)

	for i := 0; i < count; i++ {
		incoming := g.rand.Float64() < g.cfg.IncomingChance
		amount := g.amount(incoming)
		counterparty := counterparties[g.rand.Intn(len(counterparties))]

		out = append(out, domain.PaymentEnvelope{
			Payment: &domain.Payment{
				ID:                accountID*1000 + int64(i),
				Amount:            domain.Balance{Value: amount, Currency: defaultCurrency},
				CounterpartyAlias: domain.CounterpartyAlias{DisplayName: counterparty},
				Description:       describe(counterparty, incoming),
				Created:           now.AddDate(0, 0, -i).Format(createdLayout),
			},
		})
	}
	return out
}

func (g *Generator) amount(incoming bool) string {
	return formatAmount(incoming, g.rand.Float64())
}

var (
	incomingSpan = decimal.NewFromInt(1000)
	incomingLow  = decimal.NewFromInt(100)
	outgoingSpan = decimal.NewFromInt(100)
	outgoingLow  = decimal.NewFromInt(-110)
)

// formatAmount maps u in [0, 1) onto [100, 1100) for incoming and [-110, -10) for outgoing
// payments. The arithmetic stays in decimal and floors to cents so the upper bound is never reached.
func formatAmount(incoming bool, u float64) string {
	span, low := outgoingSpan, outgoingLow
	if incoming {
		span, low = incomingSpan, incomingLow
	}
	return decimal.NewFromFloat(u).Mul(span).Add(low).RoundFloor(2).StringFixed(2)
}

func describe(counterparty string, incoming bool) string {
	switch {
	case incoming && counterparty == salary:
		return "Monthly Salary"
	case incoming:
		return fmt.Sprintf("Refund from %s", counterparty)
	default:
		return fmt.Sprintf("Payment to %s", counterparty)
	}
}
