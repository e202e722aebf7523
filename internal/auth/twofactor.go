package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"tenant-platform/internal/model"
	"tenant-platform/prometheus"
)

// TwoFactorEngine issues and validates one-time login codes.
type TwoFactorEngine struct {
	codes CodeStore
}

// NewTwoFactorEngine creates a two-factor engine over the given store.
func NewTwoFactorEngine(codes CodeStore) *TwoFactorEngine {
	return &TwoFactorEngine{codes: codes}
}

// Issue generates a uniformly random 6-digit code, persists it and
// returns it for out-of-band delivery. Multiple unused codes may coexist
// for one user.
func (e *TwoFactorEngine) Issue(ctx context.Context, userID uint) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	row := &model.TwoFactorCode{
		UserID: userID,
		Code:   code,
	}
	if err := e.codes.Create(ctx, row); err != nil {
		return "", fmt.Errorf("failed to persist two-factor code: %w", err)
	}

	prometheus.TwoFactorIssuedCounter.Inc()
	return code, nil
}

// Validate checks the submitted code against the most recently created
// unused row matching it and consumes that row on success. Expired,
// consumed, mismatched and unknown codes all come back as plain false.
func (e *TwoFactorEngine) Validate(ctx context.Context, userID uint, submitted string) (bool, error) {
	row, err := e.codes.LatestUnused(ctx, userID, submitted)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return false, nil
		}
		return false, err
	}

	if !row.IsValid() {
		return false, nil
	}

	// Consumption is a compare-and-set so two concurrent submissions of
	// the same code cannot both pass.
	return e.codes.Consume(ctx, row.ID)
}

// generateCode returns a random code in the range 100000-999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
