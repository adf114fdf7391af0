package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	repository "github.com/aaravmahajanofficial/pharmacy-checkout/internal/repositories"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (repository.UploadRateLimiter, redismock.ClientMock, *config.UploadConfig) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	cfg := &config.UploadConfig{MaxAttempts: 3, WindowSize: time.Minute}

	return repository.NewUploadRateLimiter(client, cfg), mock, cfg
}

func TestUploadRateLimiter(t *testing.T) {
	ctx := t.Context()
	key := "upload_attempts:session-1"

	t.Run("First attempt opens the window", func(t *testing.T) {
		// Arrange
		limiter, mock, cfg := setupLimiter(t)
		mock.ExpectIncr(key).SetVal(1)
		mock.ExpectExpire(key, cfg.WindowSize).SetVal(true)

		// Act
		allowed, remaining, retryAfter, err := limiter.Allow(ctx, "session-1")

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2, remaining)
		assert.Zero(t, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Last allowed attempt", func(t *testing.T) {
		// Arrange
		limiter, mock, _ := setupLimiter(t)
		mock.ExpectIncr(key).SetVal(3)

		// Act
		allowed, remaining, _, err := limiter.Allow(ctx, "session-1")

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Over the limit", func(t *testing.T) {
		// Arrange
		limiter, mock, _ := setupLimiter(t)
		mock.ExpectIncr(key).SetVal(4)
		mock.ExpectTTL(key).SetVal(42 * time.Second)

		// Act
		allowed, remaining, retryAfter, err := limiter.Allow(ctx, "session-1")

		// Assert
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.Equal(t, 42, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Redis failure", func(t *testing.T) {
		// Arrange
		limiter, mock, _ := setupLimiter(t)
		expectedErr := errors.New("redis down")
		mock.ExpectIncr(key).SetErr(expectedErr)

		// Act
		allowed, _, _, err := limiter.Allow(ctx, "session-1")

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.False(t, allowed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
