// Package auth resolves presented API keys to caller identities. With no
// keys configured the endpoint is open; with keys configured the check
// fails closed.
package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// CallerStore persists callers. Implementations must be idempotent per
// API key so that replicas converge on one row.
type CallerStore interface {
	FirstOrCreateCaller(ctx context.Context, caller *entity.Caller) error
}

type Authenticator struct {
	keys  map[string]string
	store CallerStore
	l     logger.Interface

	mu      sync.Mutex
	callers map[string]*entity.Caller
}

// New builds an authenticator from comma-separated `key:name` bindings.
// A binding without a name gets one derived from the key. store may be
// nil; persistence is then skipped.
func New(bindings string, store CallerStore, l logger.Interface) *Authenticator {
	return &Authenticator{
		keys:    parseBindings(bindings),
		store:   store,
		l:       l,
		callers: make(map[string]*entity.Caller),
	}
}

// Enabled reports whether any keys are configured.
func (a *Authenticator) Enabled() bool { return len(a.keys) > 0 }

// Authenticate resolves a presented key. When authentication is
// disabled it returns (nil, nil): the request proceeds anonymously.
// When enabled, an absent or unknown key yields entity.ErrUnauthorized;
// there is no fallback to open. Concurrent first use of the same key
// resolves to a single caller instance.
func (a *Authenticator) Authenticate(ctx context.Context, presented string) (*entity.Caller, error) {
	if !a.Enabled() {
		return nil, nil
	}

	presented = strings.TrimSpace(presented)
	name, ok := a.keys[presented]
	if presented == "" || !ok {
		return nil, entity.ErrUnauthorized
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if caller, seen := a.callers[presented]; seen {
		return caller, nil
	}

	caller := &entity.Caller{ID: uuid.New().String(), Name: name, APIKey: presented}
	if a.store != nil {
		// Best effort: a broken registry must not reject a valid key.
		if err := a.store.FirstOrCreateCaller(ctx, caller); err != nil {
			a.l.Error("persisting caller %s: %s", name, err)
		}
	}
	a.callers[presented] = caller

	return caller, nil
}

func parseBindings(bindings string) map[string]string {
	keys := make(map[string]string)

	for _, token := range strings.Split(bindings, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		key, name := token, ""
		if i := strings.IndexByte(token, ':'); i >= 0 {
			key, name = strings.TrimSpace(token[:i]), strings.TrimSpace(token[i+1:])
		}
		if key == "" {
			continue
		}
		if name == "" {
			name = derivedName(key)
		}
		keys[key] = name
	}

	return keys
}

func derivedName(key string) string {
	if len(key) > 8 {
		key = key[:8]
	}
	return "caller-" + key
}
