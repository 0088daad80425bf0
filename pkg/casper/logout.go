package casper

import "context"

// Logout ends the session: a best-effort sign-out request, then the local
// connection and credentials are cleared and the user is sent to the login
// location. Concurrent calls collapse into one.
func (a *Application) Logout(ctx context.Context) {
	if !a.loggingOut.CompareAndSwap(false, true) {
		return
	}
	defer a.loggingOut.Store(false)

	primary := a.deps.Primary
	credential := primary.Credential()

	if a.deps.SignOut != nil && credential != "" {
		if err := a.deps.SignOut.SignOut(ctx, a.cfg.SignOutPath, credential); err != nil {
			a.logger.Warn("Sign-out request failed, continuing logout", "error", err)
		}
	}

	primary.Disconnect()
	primary.WipeCredentials()
	if a.deps.Secondary != nil {
		a.deps.Secondary.Disconnect()
	}

	a.backoff.Stop()

	a.mu.Lock()
	a.record = nil
	a.mu.Unlock()

	a.metrics.LoggedOut()
	a.logger.Info("Logged out", "redirect", a.cfg.LoginLocation)
	a.deps.Redirect.Redirect(a.cfg.LoginLocation)
}
