// Package mirror copies the logged-in user's accounts and payments into the graph.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/normalize"
)

const defaultWorkers = 4

// ErrNoProfile is returned when the user collection holds no person.
var ErrNoProfile = errors.New("user info holds no person")

// Source is the read side of bunq.Client.
type Source interface {
	GetUserInfo(ctx context.Context) ([]domain.UserEnvelope, error)
	GetAccounts(ctx context.Context) ([]domain.MonetaryAccountEnvelope, error)
	GetTransactions(ctx context.Context, accountID int64) ([]domain.PaymentEnvelope, error)
}

// Writer is the write side of repository.Repository.
type Writer interface {
	UpsertUser(ctx context.Context, user domain.UserProfile) error
	UpsertAccount(ctx context.Context, userID int64, acc domain.Account) error
	UpsertTransactions(ctx context.Context, accountID int64, txs []domain.Transaction) error
}

// Stats summarises one run.
type Stats struct {
	UserID       int64
	Accounts     int
	Transactions int
	Failed       int
	Duration     time.Duration
}

// Syncer mirrors one user per Run. Accounts are processed concurrently.
type Syncer struct {
	source  Source
	writer  Writer
	workers int
	logger  *slog.Logger
}

// New builds a Syncer. workers <= 0 selects the default.
func New(source Source, writer Writer, workers int, logger *slog.Logger) *Syncer {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		source:  source,
		writer:  writer,
		workers: workers,
		logger:  logger.With("component", "mirror"),
	}
}

// Run mirrors the user, then every account with its payments. A failing account does not stop
// the others; its error is part of the returned *TaskError and Stats.Failed counts it.
func (s *Syncer) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	users, err := s.source.GetUserInfo(ctx)
	if err != nil {
		return stats, fmt.Errorf("load user: %w", err)
	}
	profile, err := firstProfile(users)
	if err != nil {
		return stats, err
	}
	stats.UserID = profile.ID
	if err := s.writer.UpsertUser(ctx, profile); err != nil {
		return stats, err
	}

	envs, err := s.source.GetAccounts(ctx)
	if err != nil {
		return stats, fmt.Errorf("load accounts: %w", err)
	}
	accounts := make([]domain.Account, 0, len(envs))
	for _, env := range envs {
		if env.MonetaryAccountBank == nil {
			continue
		}
		accounts = append(accounts, normalize.Account(env))
	}

	var mirrored, payments, failed atomic.Int64
	err = runPool(ctx, s.workers, len(accounts), func(ctx context.Context, idx int) error {
		acc := accounts[idx]
		n, err := s.mirrorAccount(ctx, profile.ID, acc)
		if err != nil {
			if !isCancellation(err) {
				failed.Add(1)
				s.logger.Warn("account mirror failed", "accountId", acc.ID, "error", err)
			}
			return err
		}
		mirrored.Add(1)
		payments.Add(int64(n))
		return nil
	})

	stats.Accounts = int(mirrored.Load())
	stats.Transactions = int(payments.Load())
	stats.Failed = int(failed.Load())
	stats.Duration = time.Since(start)
	s.logger.Info("mirror finished",
		"userId", stats.UserID,
		"accounts", stats.Accounts,
		"transactions", stats.Transactions,
		"failed", stats.Failed,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	return stats, err
}

func (s *Syncer) mirrorAccount(ctx context.Context, userID int64, acc domain.Account) (int, error) {
	if err := s.writer.UpsertAccount(ctx, userID, acc); err != nil {
		return 0, err
	}
	envs, err := s.source.GetTransactions(ctx, acc.ID)
	if err != nil {
		return 0, fmt.Errorf("load transactions for account %d: %w", acc.ID, err)
	}
	txs := normalize.Transactions(envs)
	if err := s.writer.UpsertTransactions(ctx, acc.ID, txs); err != nil {
		return 0, err
	}
	return len(txs), nil
}

func firstProfile(users []domain.UserEnvelope) (domain.UserProfile, error) {
	for _, u := range users {
		if p, ok := u.Profile(); ok {
			return p, nil
		}
	}
	return domain.UserProfile{}, ErrNoProfile
}
