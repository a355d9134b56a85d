package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	retryMaxAttempts     = 3
	retryInitialInterval = 2 * time.Second
	retryMaxInterval     = 10 * time.Second
)

// Retrying wraps a Service with exponential-backoff retries. Parse errors
// are permanent: a malformed reply will not get better by resending the
// identical prompt at temperature 0.3, and authoring retries would burn
// generation quota.
type Retrying struct {
	inner Service
	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// NewRetrying wraps svc with the default retry policy.
func NewRetrying(svc Service) *Retrying {
	return &Retrying{
		inner: svc,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = retryInitialInterval
			bo.MaxInterval = retryMaxInterval
			return backoff.WithMaxRetries(bo, retryMaxAttempts-1)
		},
	}
}

func (r *Retrying) retry(ctx context.Context, call string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return backoff.Permanent(err)
		}
		slog.Warn("generation service call failed, retrying", "call", call, "attempt", attempt, "error", err)
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(r.newBackOff(), ctx))
}

func (r *Retrying) Structure(ctx context.Context, syllabusText string) (CourseStructure, error) {
	var out CourseStructure
	err := r.retry(ctx, "structure", func() error {
		var err error
		out, err = r.inner.Structure(ctx, syllabusText)
		return err
	})
	return out, err
}

func (r *Retrying) Author(ctx context.Context, req AuthorRequest) ([]QuestionRecord, error) {
	var out []QuestionRecord
	err := r.retry(ctx, "author", func() error {
		var err error
		out, err = r.inner.Author(ctx, req)
		return err
	})
	return out, err
}

func (r *Retrying) Evaluate(ctx context.Context, q QuestionRecord) (float64, error) {
	var out float64
	err := r.retry(ctx, "evaluate", func() error {
		var err error
		out, err = r.inner.Evaluate(ctx, q)
		return err
	})
	return out, err
}

func (r *Retrying) Refine(ctx context.Context, questionText, feedback string) (string, error) {
	var out string
	err := r.retry(ctx, "refine", func() error {
		var err error
		out, err = r.inner.Refine(ctx, questionText, feedback)
		return err
	})
	return out, err
}
