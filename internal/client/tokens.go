package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// TokenStore keeps the bearer token of the signed-in traveler.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryTokens forgets the token when the process exits.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokens) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) Clear(ctx context.Context) error { return m.SetToken(ctx, "") }

const tokenKey = "auth:token"

// BadgerTokens keeps the token next to the resume tickets, so a restarted client is still
// signed in. Tokens are not tab scoped: signing in on one tab signs every tab in.
type BadgerTokens struct {
	DB *badger.DB
}

func (b BadgerTokens) Token(context.Context) (string, error) {
	var tok string
	err := b.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tok = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	return tok, err
}

func (b BadgerTokens) SetToken(_ context.Context, token string) error {
	return b.DB.Update(func(txn *badger.Txn) error {
		if token == "" {
			return txn.Delete([]byte(tokenKey))
		}
		return txn.Set([]byte(tokenKey), []byte(token))
	})
}

func (b BadgerTokens) Clear(ctx context.Context) error { return b.SetToken(ctx, "") }
