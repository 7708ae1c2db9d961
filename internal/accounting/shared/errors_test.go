package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyKeepsExistingKind(t *testing.T) {
	err := fmt.Errorf("close period: %w", ErrPeriodAlreadyClosed)
	require.Same(t, err, Classify(err))
	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, ErrPeriodAlreadyClosed))
	assert.Equal(t, "Period is already closed", MessageOf(err))
}

func TestClassifyWrapsStorageAndDeadlineErrors(t *testing.T) {
	storage := Classify(errors.New("connection reset"))
	assert.Equal(t, KindTransaction, KindOf(storage))
	assert.Equal(t, "transaction failed", MessageOf(storage))

	timeout := Classify(fmt.Errorf("recalc: %w", context.DeadlineExceeded))
	assert.True(t, IsTimeout(timeout))
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))

	assert.NoError(t, Classify(nil))
}

func TestBalancedTolerance(t *testing.T) {
	assert.True(t, Balanced(decimal.RequireFromString("100.00"), decimal.RequireFromString("100.00")))
	assert.True(t, Balanced(decimal.RequireFromString("100.004"), decimal.RequireFromString("100.00")))
	assert.False(t, Balanced(decimal.RequireFromString("100.01"), decimal.RequireFromString("100.00")))
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.50", Format(amount))

	zero, err := ParseAmount("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = ParseAmount("12,50")
	assert.True(t, IsValidation(err))

	assert.True(t, HasCents(decimal.RequireFromString("1.25")))
	assert.False(t, HasCents(decimal.RequireFromString("1.255")))
}
