// Package shell holds the application's top-level authentication state and renders the page frame.
//
// The [Shell] mirrors the persisted session in memory. It is passed explicitly to every page view
// and command; there is no package-level auth state.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/session"
	"github.com/desertthunder/bbx/internal/shared"
)

const Brand string = "bbx board"

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Shell is the application shell: current user, logged-in flag, login/logout mutators and the frame.
type Shell struct {
	store  session.Store
	logger *log.Logger

	mu   sync.RWMutex
	sess *models.Session
}

// New creates an anonymous shell over store.
func New(store session.Store, logger *log.Logger) *Shell {
	return &Shell{store: store, logger: logger}
}

// Start loads the persisted session. A missing or unreadable session leaves the shell anonymous;
// only storage failures are returned.
func (s *Shell) Start(ctx context.Context) error {
	sess, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNoSession):
		s.SetSession(nil)
		return nil
	case err != nil:
		s.SetSession(nil)
		return err
	}

	s.SetSession(sess)
	if s.logger != nil {
		s.logger.Debug("session restored", "user_id", sess.User.ID)
	}
	return nil
}

// SetSession replaces the in-memory session; nil or an invalid session means anonymous.
func (s *Shell) SetSession(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !sess.Valid() {
		s.sess = nil
		return
	}
	cp := *sess
	s.sess = &cp
}

// Session returns a copy of the current session or nil.
func (s *Shell) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return nil
	}
	cp := *s.sess
	return &cp
}

// CurrentUser returns a copy of the signed-in user or nil.
func (s *Shell) CurrentUser() *models.UserProfile {
	if sess := s.Session(); sess != nil {
		return &sess.User
	}
	return nil
}

// UserID is the signed-in user's id, 0 when anonymous.
func (s *Shell) UserID() int {
	if u := s.CurrentUser(); u != nil {
		return u.ID
	}
	return 0
}

func (s *Shell) LoggedIn() bool {
	return s.Session() != nil
}

// Token implements services.TokenSource from the in-memory mirror.
func (s *Shell) Token(context.Context) (string, bool) {
	if sess := s.Session(); sess != nil {
		return sess.AccessToken, true
	}
	return "", false
}

// RequireAuth guards write actions.
func (s *Shell) RequireAuth() error {
	if !s.LoggedIn() {
		return fmt.Errorf("%w: sign in with `bbx auth login` first", shared.ErrNotAuthenticated)
	}
	return nil
}

// UpdateUser refreshes the stored profile after a profile edit, keeping the token.
func (s *Shell) UpdateUser(ctx context.Context, user models.UserProfile) error {
	sess := s.Session()
	if sess == nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.store.Save(ctx, sess.AccessToken, user); err != nil {
		return err
	}
	s.SetSession(&models.Session{AccessToken: sess.AccessToken, User: user})
	return nil
}

// Logout clears the store and the in-memory state.
func (s *Shell) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.SetSession(nil)
	return nil
}

// Nav renders the navigation bar: brand, links and the user's nickname or a login hint.
func (s *Shell) Nav() string {
	who := "login"
	if u := s.CurrentUser(); u != nil {
		who = u.DisplayName()
	}
	return fmt.Sprintf("%s  Home  Posts  [%s]", brandStyle.Render(Brand), who)
}

// Frame wraps a page body with the navigation bar and the page title.
func (s *Shell) Frame(title, body string) string {
	nav := s.Nav()
	width := max(lipgloss.Width(nav), lipgloss.Width(title), 20)

	var b strings.Builder
	b.WriteString(nav + "\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", width)) + "\n")
	if title != "" {
		b.WriteString(titleStyle.Render(title) + "\n\n")
	}
	b.WriteString(strings.TrimRight(body, "\n") + "\n")
	return b.String()
}
