package checkout

import (
	"context"

	"travelcheckout/internal/resume"
	"travelcheckout/internal/signal"
	"travelcheckout/internal/utils"
)

// Recovery continues a checkout after sign-in. It runs once at start-up and again on
// every identity-changed signal; a ticket is consumed at most once.
type Recovery struct {
	Tickets   resume.Store
	Identity  IdentityService
	Navigator Navigator
	Signals   signal.Bus
}

// Run consumes the ticket when one exists and the traveler is now signed in, then
// navigates to its return path. It reports the path it navigated to.
func (r *Recovery) Run(ctx context.Context) (string, bool, error) {
	t, ok, err := r.Tickets.Load(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	_, signedIn, err := r.Identity.CurrentIdentity(ctx)
	if err != nil {
		utils.LogError("", "checkout", "recovery_identity", err)
		return "", false, nil
	}
	if !signedIn {
		return "", false, nil
	}
	t, ok, err = r.Tickets.Take(ctx)
	if err != nil || !ok {
		// someone else consumed it first
		return "", false, err
	}
	utils.LogEvent("", "checkout", "recovery_resume", "return_path="+t.ReturnPath)
	if err := r.Navigator.Navigate(ctx, t.ReturnPath); err != nil {
		return t.ReturnPath, false, err
	}
	return t.ReturnPath, true, nil
}

// Watch calls Run on every identity-changed signal until ctx ends.
func (r *Recovery) Watch(ctx context.Context) error {
	sub := r.Signals.Subscribe()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-sub.C:
			if ev.Name != signal.IdentityChanged {
				continue
			}
			if _, _, err := r.Run(ctx); err != nil {
				utils.LogError("", "checkout", "recovery_run", err)
			}
		}
	}
}
