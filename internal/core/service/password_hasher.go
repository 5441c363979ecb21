package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stashly/stash-api/internal/api/metrics"
)

// Executor runs fn somewhere other than the calling goroutine and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// inlineExecutor runs jobs on the caller's goroutine.
type inlineExecutor struct{}

func (inlineExecutor) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}

// BcryptHasher hashes passwords with bcrypt on an Executor. Each hash embeds a
// fresh random salt, so identical inputs produce different outputs.
type BcryptHasher struct {
	cost int
	exec Executor
}

// NewBcryptHasher returns a hasher using cost (bcrypt.DefaultCost when out of
// range). A nil exec runs hashing inline.
func NewBcryptHasher(cost int, exec Executor) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if exec == nil {
		exec = inlineExecutor{}
	}
	return &BcryptHasher{cost: cost, exec: exec}
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		out     []byte
		hashErr = errors.New("hash did not complete")
	)
	start := time.Now()
	err := h.exec.Do(ctx, func() {
		out, hashErr = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if hashErr != nil {
		return "", fmt.Errorf("hash password: %w", hashErr)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch, not an error; errors are reserved for cancellation.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	var cmpErr = errors.New("verify did not complete")
	start := time.Now()
	err := h.exec.Do(ctx, func() {
		cmpErr = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	})
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return cmpErr == nil, nil
}
