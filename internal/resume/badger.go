package resume

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists the ticket on disk so it survives a process restart, which is what
// a full page reload looks like to the terminal client.
type BadgerStore struct {
	db  *badger.DB
	key []byte
}

func NewBadgerStore(db *badger.DB, tab string) *BadgerStore {
	return &BadgerStore{db: db, key: []byte(Key(tab))}
}

func (s *BadgerStore) Save(_ context.Context, t Ticket) error {
	raw, err := encode(t)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, raw)
	})
}

func (s *BadgerStore) Load(_ context.Context) (Ticket, bool, error) {
	var t Ticket
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			t, derr = decode(val)
			return derr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Ticket{}, false, nil
	}
	if err != nil {
		return Ticket{}, false, err
	}
	return t, true, nil
}

// Take reads and deletes inside one read-write transaction; a concurrent Take conflicts
// and sees the key gone on retry.
func (s *BadgerStore) Take(_ context.Context) (Ticket, bool, error) {
	var (
		t     Ticket
		found bool
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			var derr error
			t, derr = decode(val)
			return derr
		}); err != nil {
			return err
		}
		found = true
		return txn.Delete(s.key)
	})
	if errors.Is(err, badger.ErrConflict) {
		return Ticket{}, false, nil
	}
	if err != nil {
		return Ticket{}, false, err
	}
	return t, found, nil
}

func (s *BadgerStore) Delete(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
}
