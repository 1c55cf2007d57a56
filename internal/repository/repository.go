// Package repository mirrors the dashboard's user, accounts and payments into the graph so they
// can be explored with Cypher alongside the live view.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/graph"
)

const (
	defaultCounterpartyLimit = 10
	maxCounterpartyLimit     = 100
)

// Direction values stored on payment nodes.
const (
	DirectionIncoming = "INCOMING"
	DirectionOutgoing = "OUTGOING"
)

// CounterpartySummary aggregates the payments an account exchanged with one counterparty.
type CounterpartySummary struct {
	Name     string `json:"name"`
	Payments int64  `json:"payments"`
	Total    string `json:"total"`
}

// Repository writes and reads the graph mirror.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// UpsertUser creates or refreshes the owner node.
func (r *Repository) UpsertUser(ctx context.Context, user domain.UserProfile) error {
	if user.ID == 0 {
		return errors.New("user id is required")
	}
	params := map[string]any{
		"userId": user.ID,
		"props": map[string]any{
			"displayName": user.DisplayName,
			"firstName":   user.FirstName,
			"lastName":    user.LastName,
			"email":       user.Email,
		},
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertUserCypher, params); err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return nil
}

// UpsertAccount creates or refreshes an account and links it to its owner.
func (r *Repository) UpsertAccount(ctx context.Context, userID int64, acc domain.Account) error {
	if acc.ID == 0 {
		return errors.New("account id is required")
	}
	params := map[string]any{
		"userId":    userID,
		"accountId": acc.ID,
		"props": map[string]any{
			"description": acc.Description,
			"displayName": acc.DisplayName,
			"balance":     acc.Balance,
			"currency":    acc.Currency,
			"iban":        acc.IBAN,
			"color":       acc.Color,
		},
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertAccountCypher, params); err != nil {
		return fmt.Errorf("upsert account %d: %w", acc.ID, err)
	}
	return nil
}

// UpsertTransactions writes the payments of one account in a single statement.
func (r *Repository) UpsertTransactions(ctx context.Context, accountID int64, txs []domain.Transaction) error {
	if accountID == 0 {
		return errors.New("account id is required")
	}
	if len(txs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow(tx))
	}
	params := map[string]any{
		"accountId":    accountID,
		"transactions": rows,
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertTransactionsCypher, params); err != nil {
		return fmt.Errorf("upsert %d transactions for account %d: %w", len(txs), accountID, err)
	}
	return nil
}

// TopCounterparties lists the counterparties of an account, most frequent first.
func (r *Repository) TopCounterparties(ctx context.Context, accountID int64, limit int) ([]CounterpartySummary, error) {
	if limit <= 0 {
		limit = defaultCounterpartyLimit
	}
	if limit > maxCounterpartyLimit {
		limit = maxCounterpartyLimit
	}
	res, err := r.client.ExecuteRead(ctx, topCounterpartiesCypher, map[string]any{
		"accountId": accountID,
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("top counterparties query: %w", err)
	}
	out := make([]CounterpartySummary, 0, len(res.Records))
	for _, record := range res.Records {
		out = append(out, CounterpartySummary{
			Name:     toString(record["name"]),
			Payments: toInt64(record["payments"]),
			Total:    sumAmounts(record["amounts"]),
		})
	}
	return out, nil
}

func transactionRow(tx domain.Transaction) map[string]any {
	direction := DirectionOutgoing
	if tx.Incoming() {
		direction = DirectionIncoming
	}
	return map[string]any{
		"paymentId":    tx.ID,
		"counterparty": tx.CounterpartyName,
		"props": map[string]any{
			"amount":      tx.Amount,
			"currency":    tx.Currency,
			"description": tx.Description,
			"createdAt":   formatTime(tx.CreatedAt),
			"direction":   direction,
		},
	}
}

// sumAmounts adds decimal strings exactly; unparseable entries are skipped.
func sumAmounts(val any) string {
	total := decimal.Zero
	items, _ := val.([]any)
	for _, item := range items {
		d, err := decimal.NewFromString(toString(item))
		if err != nil {
			continue
		}
		total = total.Add(d)
	}
	return total.StringFixed(2)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

const upsertUserCypher = `
MERGE (u:User {userId: $userId})
SET u += $props, u.syncedAt = datetime()
RETURN u.userId AS userId
`

const upsertAccountCypher = `
MERGE (u:User {userId: $userId})
MERGE (a:Account {accountId: $accountId})
SET a += $props, a.syncedAt = datetime()
MERGE (u)-[:OWNS]->(a)
RETURN a.accountId AS accountId
`

const upsertTransactionsCypher = `
MATCH (a:Account {accountId: $accountId})
UNWIND $transactions AS tx
MERGE (p:Payment {paymentId: tx.paymentId})
SET p += tx.props
MERGE (a)-[:HAS_PAYMENT]->(p)
MERGE (c:Counterparty {name: tx.counterparty})
MERGE (p)-[:WITH]->(c)
RETURN count(p) AS written
`

const topCounterpartiesCypher = `
MATCH (:Account {accountId: $accountId})-[:HAS_PAYMENT]->(p:Payment)-[:WITH]->(c:Counterparty)
WITH c.name AS name, count(p) AS payments, collect(p.amount) AS amounts
RETURN name, payments, amounts
ORDER BY payments DESC, name ASC
LIMIT $limit
`
