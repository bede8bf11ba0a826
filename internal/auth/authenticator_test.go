package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

type recordingStore struct {
	mu      sync.Mutex
	calls   int
	failing bool
}

func (s *recordingStore) FirstOrCreateCaller(_ context.Context, _ *entity.Caller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing {
		return errors.New("registry down")
	}
	return nil
}

func TestOpenMode(t *testing.T) {
	a := New("", nil, logger.New("error"))

	assert.False(t, a.Enabled())

	caller, err := a.Authenticate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, caller)
}

func TestAuthenticateKnownKey(t *testing.T) {
	a := New("secret:acme", nil, logger.New("error"))
	require.True(t, a.Enabled())

	caller, err := a.Authenticate(context.Background(), "secret")
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, "acme", caller.Name)
	assert.Equal(t, "secret", caller.APIKey)
	assert.NotEmpty(t, caller.ID)

	// The same key resolves to the same caller.
	again, err := a.Authenticate(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, caller.ID, again.ID)
}

func TestAuthenticateFailsClosed(t *testing.T) {
	a := New("secret:acme", nil, logger.New("error"))

	for _, presented := range []string{"", "wrong", "SECRET"} {
		_, err := a.Authenticate(context.Background(), presented)
		assert.ErrorIs(t, err, entity.ErrUnauthorized, "key %q", presented)
	}
}

func TestAuthenticateTrimsPresentedKey(t *testing.T) {
	a := New("secret:acme", nil, logger.New("error"))

	caller, err := a.Authenticate(context.Background(), "  secret  ")
	require.NoError(t, err)
	assert.Equal(t, "acme", caller.Name)
}

func TestBindingWithoutNameGetsDerivedOne(t *testing.T) {
	a := New("abcdefgh1234", nil, logger.New("error"))

	caller, err := a.Authenticate(context.Background(), "abcdefgh1234")
	require.NoError(t, err)
	assert.Equal(t, "caller-abcdefgh", caller.Name)
}

func TestMalformedBindingsAreSkipped(t *testing.T) {
	a := New(" , :noname, key1:alpha ,", nil, logger.New("error"))

	caller, err := a.Authenticate(context.Background(), "key1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", caller.Name)

	_, err = a.Authenticate(context.Background(), "noname")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestConcurrentFirstUseCreatesOneCaller(t *testing.T) {
	store := &recordingStore{}
	a := New("secret:acme", store, logger.New("error"))

	ids := make([]string, 10)
	var wg sync.WaitGroup
	for i := 0; i < len(ids); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller, err := a.Authenticate(context.Background(), "secret")
			if assert.NoError(t, err) {
				ids[i] = caller.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.calls)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestStoreFailureDoesNotRejectKey(t *testing.T) {
	a := New("secret:acme", &recordingStore{failing: true}, logger.New("error"))

	caller, err := a.Authenticate(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "acme", caller.Name)
}
