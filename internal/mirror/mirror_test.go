package mirror

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vanshika/bunqdash/internal/bunq"
	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/generator"
	"github.com/vanshika/bunqdash/internal/graph"
	"github.com/vanshika/bunqdash/internal/logging"
	"github.com/vanshika/bunqdash/internal/repository"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

func demoClient(t *testing.T) *bunq.Client {
	t.Helper()
	store := tokenstore.NewMemoryStore()
	source := bunq.NewMockSource(generator.NewFixtures(generator.New(generator.DefaultConfig().WithSeed(5))), store, bunq.Delays{})
	client := bunq.NewClient(source, store, logging.Discard(), nil)
	if res := client.Authenticate(context.Background()); !res.Success {
		t.Fatalf("demo authenticate failed: %v", res.Err)
	}
	return client
}

func TestSyncer_MirrorsDemoData(t *testing.T) {
	mem := graph.NewMemoryClient()
	s := New(demoClient(t), repository.New(mem), 2, logging.Discard())

	stats, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.UserID != 1 || stats.Accounts != 3 || stats.Transactions != 55 || stats.Failed != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	// one user, three accounts, three payment batches
	if got := len(mem.Writes()); got != 7 {
		t.Fatalf("expected 7 writes, got %d", got)
	}
}

type recordingWriter struct {
	mu       sync.Mutex
	accounts []int64
	failOn   int64
}

func (w *recordingWriter) UpsertUser(context.Context, domain.UserProfile) error { return nil }

func (w *recordingWriter) UpsertAccount(_ context.Context, _ int64, acc domain.Account) error {
	if acc.ID == w.failOn {
		return errors.New("constraint violated")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = append(w.accounts, acc.ID)
	return nil
}

func (w *recordingWriter) UpsertTransactions(context.Context, int64, []domain.Transaction) error {
	return nil
}

func TestSyncer_OneAccountFailing(t *testing.T) {
	w := &recordingWriter{failOn: 2}
	stats, err := New(demoClient(t), w, 4, logging.Discard()).Run(context.Background())

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || len(taskErr.Errors) != 1 {
		t.Fatalf("expected a single task error, got %v", err)
	}
	if stats.Accounts != 2 || stats.Failed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(w.accounts) != 2 {
		t.Fatalf("expected the other accounts mirrored, got %v", w.accounts)
	}
}

type emptyUserSource struct{ Source }

func (emptyUserSource) GetUserInfo(context.Context) ([]domain.UserEnvelope, error) {
	return []domain.UserEnvelope{{}}, nil
}

func TestSyncer_NoProfile(t *testing.T) {
	_, err := New(emptyUserSource{}, &recordingWriter{}, 1, logging.Discard()).Run(context.Background())
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}

func TestRunPool(t *testing.T) {
	t.Run("visits every index", func(t *testing.T) {
		var sum atomic.Int64
		err := runPool(context.Background(), 3, 10, func(_ context.Context, idx int) error {
			sum.Add(int64(idx))
			return nil
		})
		if err != nil || sum.Load() != 45 {
			t.Fatalf("expected 45, got %d (%v)", sum.Load(), err)
		}
	})
	t.Run("collects errors", func(t *testing.T) {
		boom := errors.New("boom")
		err := runPool(context.Background(), 2, 4, func(_ context.Context, idx int) error {
			if idx%2 == 0 {
				return boom
			}
			return nil
		})
		var taskErr *TaskError
		if !errors.As(err, &taskErr) || len(taskErr.Errors) != 2 || !errors.Is(err, boom) {
			t.Fatalf("expected two collected errors, got %v", err)
		}
	})
	t.Run("cancellation wins", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := runPool(ctx, 1, 5, func(context.Context, int) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestTaskError_Message(t *testing.T) {
	err := &TaskError{Errors: []error{errors.New("a"), errors.New("b")}}
	if got := err.Error(); got != "multiple errors: a; b" {
		t.Fatalf("unexpected message %q", got)
	}
}
