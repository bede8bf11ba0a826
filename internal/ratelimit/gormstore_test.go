package ratelimit

import (
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrRetriesLosingFirstInsert(t *testing.T) {
	// The loser of a first-use insert race sees ER_DUP_ENTRY; the next
	// attempt finds the winner's row and increments it.
	calls := 0
	count, err := withIncrRetry(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
		return 2, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, calls)
}

func TestIncrRetriesDeadlockRollback(t *testing.T) {
	calls := 0
	count, err := withIncrRetry(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &gomysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, calls)
}

func TestIncrDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	_, err := withIncrRetry(func() (int, error) {
		calls++
		return 0, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIncrGivesUpAfterBoundedAttempts(t *testing.T) {
	calls := 0
	_, err := withIncrRetry(func() (int, error) {
		calls++
		return 0, &gomysql.MySQLError{Number: 1062}
	})

	require.Error(t, err)
	assert.Equal(t, incrAttempts, calls)
}

func TestRetryableIncrErr(t *testing.T) {
	assert.True(t, retryableIncrErr(&gomysql.MySQLError{Number: 1062}))
	assert.True(t, retryableIncrErr(&gomysql.MySQLError{Number: 1213}))
	assert.True(t, retryableIncrErr(errors.Wrap(&gomysql.MySQLError{Number: 1062}, "create bucket")))
	assert.False(t, retryableIncrErr(&gomysql.MySQLError{Number: 1146}))
	assert.False(t, retryableIncrErr(errors.New("connection refused")))
}
