package checkout

import (
	"context"
	"time"

	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/resume"
	"travelcheckout/internal/signal"
	"travelcheckout/internal/utils"
)

// AuthGate guards the identity step. When nobody is signed in it writes the resume
// ticket, presents the sign-in surface and hands back a subscription to the
// identity-changed signal; there is no timeout and no polling.
type AuthGate struct {
	Identity IdentityService
	Tickets  resume.Store
	Surface  AuthSurface
	Signals  signal.Bus
	Now      func() time.Time
}

// GateResult is either a resolved identity or a suspension.
type GateResult struct {
	Identity models.Identity
	Resolved bool
	// Wait fires when an identity-changed signal arrives. Nil when Resolved.
	Wait *signal.Subscription
}

// Check asks the identity service. A failing identity service counts as "not signed in".
func (g *AuthGate) Check(ctx context.Context) (models.Identity, bool) {
	id, ok, err := g.Identity.CurrentIdentity(ctx)
	if err != nil {
		utils.LogError("", "checkout", "identity_check", err)
		return models.Identity{}, false
	}
	return id, ok
}

// Enter runs the gate for a draft currently at returnPath.
func (g *AuthGate) Enter(ctx context.Context, returnPath string) (GateResult, error) {
	if id, ok := g.Check(ctx); ok {
		return GateResult{Identity: id, Resolved: true}, nil
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	if err := g.Tickets.Save(ctx, resume.Ticket{ReturnPath: returnPath, CreatedAt: now().UTC()}); err != nil {
		return GateResult{}, err
	}
	utils.LogEvent("", "checkout", "gate_suspend", "return_path="+returnPath)

	// subscribe before presenting so a modal that signs in synchronously is not missed
	sub := g.Signals.Subscribe()
	if g.Surface != nil {
		if err := g.Surface.Present(ctx, returnPath); err != nil {
			// the ticket stays; the user may still sign in some other way
			utils.LogError("", "checkout", "gate_present", err)
			return GateResult{Wait: sub}, err
		}
	}
	return GateResult{Wait: sub}, nil
}
