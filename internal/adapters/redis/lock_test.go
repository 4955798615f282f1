package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLockAcquire(t *testing.T) {
	client, mock := redismock.NewClientMock()
	lock := NewSeatLock(client)
	ctx := context.Background()

	key := "seat:lock:7f1c0b2e"
	mock.ExpectSetNX(key, "1", 10*time.Second).SetVal(true)

	ok, err := lock.Acquire(ctx, key, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatLockAcquireContended(t *testing.T) {
	client, mock := redismock.NewClientMock()
	lock := NewSeatLock(client)
	ctx := context.Background()

	key := "seat:lock:7f1c0b2e"
	mock.ExpectSetNX(key, "1", 10*time.Second).SetVal(false)

	ok, err := lock.Acquire(ctx, key, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeatLockRelease(t *testing.T) {
	client, mock := redismock.NewClientMock()
	lock := NewSeatLock(client)

	key := "seat:lock:7f1c0b2e"
	mock.ExpectDel(key).SetVal(1)

	assert.NoError(t, lock.Release(context.Background(), key))
	assert.NoError(t, mock.ExpectationsWereMet())
}
