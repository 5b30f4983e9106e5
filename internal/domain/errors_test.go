package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", NewValidationError("bad"), KindValidation},
		{"wrapped funds", fmt.Errorf("buy: %w", NewInsufficientFunds("no cash")), KindInsufficientFunds},
		{"holdings", NewInsufficientHoldings("too many"), KindInsufficientHoldings},
		{"credentials", NewInvalidCredentials("nope"), KindInvalidCredentials},
		{"quote", NewQuoteUnavailable("gone"), KindQuoteUnavailable},
		{"infrastructure", errors.New("connection refused"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewInsufficientFunds("Insufficient funds"))

	assert.True(t, errors.Is(err, &Error{Kind: KindInsufficientFunds}))
	assert.True(t, errors.Is(err, NewInsufficientFunds("Insufficient funds")))
	assert.False(t, errors.Is(err, NewInsufficientFunds("other message")))
	assert.False(t, errors.Is(err, &Error{Kind: KindValidation}))
	assert.Equal(t, "InsufficientFunds: Insufficient funds", errors.Unwrap(err).Error())
}
