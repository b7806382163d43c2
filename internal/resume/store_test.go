package resume

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stores(t *testing.T) map[string]func(tab string) Store {
	db := openBadger(t)
	shelf := NewShelf()
	return map[string]func(string) Store{
		"memory": func(tab string) Store { return shelf.Store(tab) },
		"badger": func(tab string) Store { return NewBadgerStore(db, tab) },
	}
}

func TestStoreSaveReplacesPreviousTicket(t *testing.T) {
	ctx := context.Background()
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open("tab-replace")
			first := Ticket{ReturnPath: "/checkout/tour/7", CreatedAt: time.Unix(100, 0).UTC()}
			second := Ticket{ReturnPath: "/checkout/room?hotelId=1&roomId=2&step=2", CreatedAt: time.Unix(200, 0).UTC()}

			require.NoError(t, s.Save(ctx, first))
			require.NoError(t, s.Save(ctx, second))

			got, ok, err := s.Load(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, second.ReturnPath, got.ReturnPath)
			assert.True(t, second.CreatedAt.Equal(got.CreatedAt))

			taken, ok, err := s.Take(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, second.ReturnPath, taken.ReturnPath)

			_, ok, err = s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok, "only one ticket may exist; nothing must remain after take")
		})
	}
}

func TestStoreTakeConsumesOnce(t *testing.T) {
	ctx := context.Background()
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open("tab-once")
			require.NoError(t, s.Save(ctx, Ticket{ReturnPath: "/checkout/tour/1", CreatedAt: time.Now()}))

			_, ok, err := s.Take(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			_, ok, err = s.Take(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreTakeUnderContention(t *testing.T) {
	ctx := context.Background()
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open("tab-race")
			require.NoError(t, s.Save(ctx, Ticket{ReturnPath: "/checkout/tour/1", CreatedAt: time.Now()}))

			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, ok, err := s.Take(ctx); err == nil && ok {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins)
		})
	}
}

func TestStoresAreTabScoped(t *testing.T) {
	ctx := context.Background()
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a, b := open("tab-a"), open("tab-b")
			require.NoError(t, a.Save(ctx, Ticket{ReturnPath: "/a", CreatedAt: time.Now()}))

			_, ok, err := b.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, a.Delete(ctx))
			_, ok, err = a.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSaveRejectsEmptyReturnPath(t *testing.T) {
	ctx := context.Background()
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := open("tab-empty").Save(ctx, Ticket{ReturnPath: "  "})
			assert.ErrorIs(t, err, ErrEmptyReturnPath)
		})
	}
}

func TestKeyDefaultsTab(t *testing.T) {
	assert.Equal(t, "checkout:resume:default", Key(""))
	assert.Equal(t, "checkout:resume:abc", Key(" abc "))
}
