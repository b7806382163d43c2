package handlers

import (
	"sync"
	"time"

	intconfig "travelcheckout/internal/config"
	"travelcheckout/internal/repositories"
	"travelcheckout/internal/services"
	"travelcheckout/internal/signal"
)

// Deps are the services the handlers build on. Repositories with a nil DB fall back to
// config.DB.
type Deps struct {
	Identity services.IdentityService
	Bookings services.BookingService
	Payments services.PaymentService
	Docs     services.DocsService
	Bookable services.BookableService
	Relay    *signal.Relay
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

// NewDeps wires services from env.
func NewDeps(env intconfig.Env, relay *signal.Relay) Deps {
	bookables := services.BookableService{Repo: repositories.BookableRepository{}}
	return Deps{
		Identity: services.IdentityService{
			Users:  repositories.UserRepository{},
			Secret: []byte(env.JWTSecret),
			TTL:    env.JWTTTL,
			Now:    time.Now,
		},
		Bookings: services.BookingService{
			BookingRepo: repositories.BookingRepository{},
			Bookables:   bookables,
		},
		Payments: services.PaymentService{
			PaymentRepo: repositories.PaymentRepository{},
			BookingRepo: repositories.BookingRepository{},
			GatewayURL:  env.PaymentGatewayURL,
			SigningKey:  []byte(env.PaymentSigningKey),
			Currency:    env.Currency,
		},
		Docs: services.DocsService{
			BookingRepo: repositories.BookingRepository{},
			Bookables:   bookables,
			Currency:    env.Currency,
		},
		Bookable: bookables,
		Relay:    relay,
	}
}

// Configure installs the services used by the handlers.
func Configure(d Deps) {
	depsMu.Lock()
	deps = d
	depsMu.Unlock()
}

func current() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}
