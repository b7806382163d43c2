package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	intconfig "travelcheckout/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	engineMu sync.RWMutex
	engine   *gin.Engine
)

// SetRouter remembers the engine so /api/routes can list it.
func SetRouter(r *gin.Engine) {
	engineMu.Lock()
	engine = r
	engineMu.Unlock()
}

// GET /api/health
func Health(c *gin.Context) {
	out := gin.H{"status": "ok", "service": "travelcheckout"}
	if relay := current().Relay; relay != nil {
		out["signal_sockets"] = relay.Count()
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/db-check
func DBCheck(c *gin.Context) {
	db := intconfig.DB
	if db == nil {
		RespondError(c, http.StatusServiceUnavailable, "database not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "database ping failed", err)
		return
	}
	st := db.Stats()
	c.JSON(http.StatusOK, gin.H{
		"message":          "database OK",
		"open_connections": st.OpenConnections,
		"in_use":           st.InUse,
	})
}

// GET /api/routes
func Routes(c *gin.Context) {
	engineMu.RLock()
	r := engine
	engineMu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "router not ready", nil)
		return
	}

	routes := r.Routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
