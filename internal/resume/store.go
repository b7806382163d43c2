// Package resume keeps the one breadcrumb that survives an authentication redirect: where
// the checkout should continue. A Store is scoped to a single tab key and holds at most
// one ticket; Save replaces, Take consumes.
package resume

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Ticket remembers where to continue after an external redirect.
type Ticket struct {
	ReturnPath string    `json:"return_path"`
	CreatedAt  time.Time `json:"created_at"`
}

var ErrEmptyReturnPath = errors.New("resume: empty return path")

// Store is a tab-scoped key/value record holding at most one Ticket.
type Store interface {
	// Save writes t, replacing any ticket already stored for the tab.
	Save(ctx context.Context, t Ticket) error
	Load(ctx context.Context) (Ticket, bool, error)
	// Take atomically loads and deletes the ticket. Only one caller ever observes it.
	Take(ctx context.Context) (Ticket, bool, error)
	Delete(ctx context.Context) error
}

// KeyPrefix namespaces ticket keys in shared backends.
const KeyPrefix = "checkout:resume:"

// Key returns the storage key for a tab.
func Key(tab string) string {
	tab = strings.TrimSpace(tab)
	if tab == "" {
		tab = "default"
	}
	return KeyPrefix + tab
}

func encode(t Ticket) ([]byte, error) {
	if strings.TrimSpace(t.ReturnPath) == "" {
		return nil, ErrEmptyReturnPath
	}
	return json.Marshal(t)
}

func decode(raw []byte) (Ticket, error) {
	var t Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}
