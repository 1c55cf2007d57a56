package mirror

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// TaskError collects the failures of independent tasks.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

// runPool calls fn for 0..total-1 on at most workers goroutines. Cancellation stops dispatch and
// is returned as is; other failures are collected into a *TaskError.
func runPool(ctx context.Context, workers, total int, fn func(ctx context.Context, idx int) error) error {
	if total == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if err := fn(ctx, idx); err != nil {
					errCh <- err
				}
			}
		}()
	}

dispatch:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}
	var taskErr TaskError
	for err := range errCh {
		taskErr.Errors = append(taskErr.Errors, err)
	}
	if len(taskErr.Errors) == 0 {
		return nil
	}
	return &taskErr
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
