package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/bbx/internal/server"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the authorization code flow: it starts the loopback callback listener, sends the
// user to the provider and waits for the redirect.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	provider := r.config.OAuth.Provider
	if path := r.config.OAuth.CallbackPath(); !strings.HasPrefix(path, "/oauth/callback/") {
		r.logger.Warn("redirect_uri path is not served by the callback listener", "path", path)
	}

	callback := server.NewCallbackHandler(provider, r.flow, r.logger)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(callback)

	srv, err := server.Listen(r.config.Server.Addr(), router, r.logger)
	if err != nil {
		return fmt.Errorf("%w: callback listener: %v", shared.ErrServiceUnavailable, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("callback listener shutdown", "error", err)
		}
	}()

	authURL, err := r.flow.Begin(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Open this URL to sign in with %s:\n%s\n\n", provider, authURL)
	if !cmd.Bool("no-browser") {
		if err := r.openURL(authURL); err != nil {
			r.logger.Warn("could not open a browser", "error", err)
		}
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Info("waiting for the provider redirect", "addr", srv.Addr())
	sess, err := callback.Wait(waitCtx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, timeout)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: login interrupted", shared.ErrCancelled)
	case err != nil:
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.writePlain("✓ Signed in as %s\n", sess.User.DisplayName())
}

// AuthLogout forgets the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.shell.LoggedIn() {
		return r.writePlain("Not signed in\n")
	}
	if err := r.flow.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}

type authStatus struct {
	LoggedIn    bool       `json:"logged_in"`
	UserID      int        `json:"user_id,omitempty"`
	Nickname    string     `json:"nickname,omitempty"`
	TokenLength int        `json:"token_length,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	State       string     `json:"state"`
}

// AuthStatus shows who is signed in. The token itself is never printed.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	state, _ := r.flow.State()
	status := authStatus{State: state.String()}

	if sess := r.shell.Session(); sess != nil {
		status.LoggedIn = true
		status.UserID = sess.User.ID
		status.Nickname = sess.User.DisplayName()
		status.TokenLength = len(sess.AccessToken)
		if exp, ok := tokenExpiry(sess.AccessToken); ok {
			status.ExpiresAt = &exp
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.LoggedIn {
		return r.writePlain("✗ Not signed in\nRun 'bbx auth login' to sign in.\n")
	}

	r.writePlain("✓ Signed in as %s (user %d)\n", status.Nickname, status.UserID)
	if status.ExpiresAt != nil {
		if time.Now().After(*status.ExpiresAt) {
			r.writePlain("Token expired %s\n", shared.FormatTime(*status.ExpiresAt))
		} else {
			r.writePlain("Token expires %s\n", shared.FormatTime(*status.ExpiresAt))
		}
	}
	return nil
}

// tokenExpiry reads the exp claim of a JWT access token without verifying it. Opaque tokens
// report false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
