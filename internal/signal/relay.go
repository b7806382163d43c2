package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"travelcheckout/internal/utils"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// Relay is the server half of the identity-changed channel: sockets register per tab and
// receive the events published for that tab (or for every tab when Event.Tab is empty).
type Relay struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]*peer
}

// peer serializes writes; a websocket allows one writer at a time.
type peer struct {
	tab string
	mu  sync.Mutex
}

func NewRelay() *Relay {
	return &Relay{conns: map[*websocket.Conn]*peer{}}
}

// Publish writes ev to every socket of ev.Tab, or to all sockets when Tab is empty.
func (r *Relay) Publish(ev Event) {
	r.mu.Lock()
	targets := make(map[*websocket.Conn]*peer, len(r.conns))
	for c, p := range r.conns {
		if ev.Tab == "" || ev.Tab == p.tab {
			targets[c] = p
		}
	}
	r.mu.Unlock()

	for c, p := range targets {
		p.mu.Lock()
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.WriteJSON(ev)
		p.mu.Unlock()
		if err != nil {
			utils.LogEvent("", "signal", "relay_write", err.Error())
			r.drop(c)
		}
	}
}

// Count is the number of connected sockets.
func (r *Relay) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Serve upgrades the request and keeps the socket registered until the peer goes away.
func (r *Relay) Serve(w http.ResponseWriter, req *http.Request, tab string) error {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.conns[conn] = &peer{tab: tab}
	r.mu.Unlock()
	utils.LogEvent("", "signal", "relay_join", "tab="+tab)

	// reads only detect close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.drop(conn)
	return nil
}

func (r *Relay) drop(c *websocket.Conn) {
	r.mu.Lock()
	_, ok := r.conns[c]
	delete(r.conns, c)
	r.mu.Unlock()
	if ok {
		_ = c.Close()
	}
}

// Bridge dials a relay and republishes its events on bus until ctx ends or the socket
// closes.
func Bridge(ctx context.Context, url string, bus Bus) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		bus.Publish(ev)
	}
}
