package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("formats message without cause", func(t *testing.T) {
		err := New(ErrCodeNotFound, "subscription not found")
		assert.Equal(t, "NOT_FOUND: subscription not found", err.Error())
	})

	t.Run("formats message with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(ErrCodeDatabase, "query failed", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := Database(cause)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("WithDetails attaches details", func(t *testing.T) {
		err := ValidationError("bad email").WithDetails(map[string]string{"field": "email"})
		assert.NotNil(t, err.Details)
	})
}

func TestHelpers(t *testing.T) {
	t.Run("AsAppError finds wrapped AppError", func(t *testing.T) {
		inner := SubscriptionRequired()
		wrapped := fmt.Errorf("gate check: %w", inner)

		appErr, ok := AsAppError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, ErrCodeSubscriptionRequired, appErr.Code)
	})

	t.Run("AsAppError rejects plain errors", func(t *testing.T) {
		_, ok := AsAppError(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("GetCode defaults to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
		assert.Equal(t, ErrCodeSignatureInvalid, GetCode(SignatureInvalid("bad sig")))
	})

	t.Run("IsAppError", func(t *testing.T) {
		assert.True(t, IsAppError(RateLimitExceeded()))
		assert.False(t, IsAppError(errors.New("plain")))
	})
}
