package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/session"
	"github.com/desertthunder/bbx/internal/shared"
	"golang.org/x/oauth2"
)

var (
	ErrMalformedCallback  = errors.New("malformed oauth callback")
	ErrAuthDenied         = errors.New("authorization denied")
	ErrStateMismatch      = errors.New("oauth state mismatch")
	ErrIncompleteExchange = errors.New("exchange response missing token or user")
)

// State is a step of the login flow.
type State int

const (
	Anonymous State = iota
	Redirecting
	AwaitingCallback
	Exchanging
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Redirecting:
		return "redirecting"
	case AwaitingCallback:
		return "awaiting_callback"
	case Exchanging:
		return "exchanging"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition is reported to listeners on every state change.
type Transition struct {
	From State
	To   State
	Err  error
}

// Listener observes transitions. It runs on the goroutine that caused the change and must not block.
type Listener func(Transition)

// Backend is the part of the API client the flow needs.
type Backend interface {
	AuthURL(ctx context.Context, provider string) (string, error)
	ExchangeCode(ctx context.Context, provider, code string) (*models.ExchangeResult, error)
}

// SessionSink mirrors the session into in-memory application state. A nil session means logged out.
type SessionSink interface {
	SetSession(sess *models.Session)
}

// outcome is the single result of exchanging one code; later callers wait on done.
type outcome struct {
	done chan struct{}
	sess *models.Session
	err  error
}

// Flow drives the OAuth authorization code login.
type Flow struct {
	cfg     shared.OAuthConfig
	backend Backend
	store   session.Store
	sink    SessionSink
	logger  *log.Logger

	// newState generates the CSRF state; replaced in tests.
	newState func() (string, error)

	mu         sync.Mutex
	state      State
	err        error
	oauthState string
	exchanged  map[string]*outcome
	listeners  []Listener
}

// NewFlow creates a flow in the [Anonymous] state. sink may be nil.
func NewFlow(cfg shared.OAuthConfig, backend Backend, store session.Store, sink SessionSink, logger *log.Logger) *Flow {
	return &Flow{
		cfg:       cfg,
		backend:   backend,
		store:     store,
		sink:      sink,
		logger:    logger,
		newState:  shared.GenerateState,
		exchanged: map[string]*outcome{},
	}
}

// OnTransition registers l for every subsequent state change.
func (f *Flow) OnTransition(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

// State returns the current state and, when [Failed], the error that caused it.
func (f *Flow) State() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.err
}

// Restore marks the flow [Authenticated] when a session was loaded at startup.
func (f *Flow) Restore(sess *models.Session) {
	if sess.Valid() {
		f.moveTo(Authenticated, nil)
	}
}

// Begin builds the provider authorization URL and moves to [AwaitingCallback].
//
// The URL carries the client id, the registered redirect URI, response_type=code and a fresh
// random state. With use_backend_url the backend builds the URL instead and no state is checked.
func (f *Flow) Begin(ctx context.Context) (string, error) {
	f.moveTo(Redirecting, nil)

	authURL, state, err := f.authorizationURL(ctx)
	if err != nil {
		return "", f.fail(err)
	}

	f.mu.Lock()
	f.oauthState = state
	f.mu.Unlock()

	f.debug("authorization url ready", "provider", f.cfg.Provider, "backend_url", f.cfg.UseBackendURL)
	f.moveTo(AwaitingCallback, nil)
	return authURL, nil
}

func (f *Flow) authorizationURL(ctx context.Context) (string, string, error) {
	if f.cfg.UseBackendURL {
		u, err := f.backend.AuthURL(ctx, f.cfg.Provider)
		if err != nil {
			return "", "", fmt.Errorf("failed to get authorization url: %w", err)
		}
		return u, "", nil
	}

	if f.cfg.ClientID == "" || f.cfg.AuthURL == "" || f.cfg.RedirectURI == "" {
		return "", "", fmt.Errorf("%w: oauth client_id, auth_url and redirect_uri are required", shared.ErrMissingConfig)
	}

	state, err := f.newState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:    f.cfg.ClientID,
		RedirectURL: f.cfg.RedirectURI,
		Endpoint:    oauth2.Endpoint{AuthURL: f.cfg.AuthURL},
	}
	return conf.AuthCodeURL(state), state, nil
}

// HandleCallback processes the provider redirect's query parameters.
//
// An error parameter or a query with neither code nor error fails without touching the store.
// A code is exchanged at most once: repeating the same callback returns the first outcome.
func (f *Flow) HandleCallback(ctx context.Context, query url.Values) (*models.Session, error) {
	code := strings.TrimSpace(query.Get("code"))
	errParam := strings.TrimSpace(query.Get("error"))

	switch {
	case errParam != "":
		desc := query.Get("error_description")
		if desc == "" {
			desc = errParam
		}
		return nil, f.fail(fmt.Errorf("%w: %s", ErrAuthDenied, desc))
	case code == "":
		return nil, f.fail(ErrMalformedCallback)
	}

	f.mu.Lock()
	expected := f.oauthState
	f.mu.Unlock()
	if expected != "" && query.Get("state") != expected {
		return nil, f.fail(ErrStateMismatch)
	}

	f.mu.Lock()
	if o, seen := f.exchanged[code]; seen {
		f.mu.Unlock()
		f.debug("ignoring repeated authorization code")
		select {
		case <-o.done:
			return o.sess, o.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	o := &outcome{done: make(chan struct{})}
	f.exchanged[code] = o
	f.mu.Unlock()

	o.sess, o.err = f.exchange(ctx, code)
	close(o.done)
	return o.sess, o.err
}

func (f *Flow) exchange(ctx context.Context, code string) (*models.Session, error) {
	f.moveTo(Exchanging, nil)

	res, err := f.backend.ExchangeCode(ctx, f.cfg.Provider, code)
	if err != nil {
		return nil, f.fail(fmt.Errorf("%w: %w", shared.ErrAuthFailed, err))
	}
	if res == nil || res.AccessToken == "" || res.User == nil || res.User.ID == 0 {
		return nil, f.fail(ErrIncompleteExchange)
	}

	if err := f.store.Save(ctx, res.AccessToken, *res.User); err != nil {
		if clearErr := f.store.Clear(ctx); clearErr != nil {
			f.warn("failed to clear after save error", "error", clearErr)
		}
		// The store no longer holds any session, so neither may the mirror.
		if f.sink != nil {
			f.sink.SetSession(nil)
		}
		return nil, f.fail(err)
	}

	sess := &models.Session{AccessToken: res.AccessToken, User: *res.User}
	if f.sink != nil {
		f.sink.SetSession(sess)
	}

	f.info("signed in", "user_id", sess.User.ID, "nickname", sess.User.Nickname, "token_len", len(sess.AccessToken))
	f.moveTo(Authenticated, nil)
	return sess, nil
}

// Logout clears the persisted session and the in-memory mirror.
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.store.Clear(ctx); err != nil {
		return err
	}
	if f.sink != nil {
		f.sink.SetSession(nil)
	}

	f.mu.Lock()
	f.oauthState = ""
	f.mu.Unlock()

	f.moveTo(Anonymous, nil)
	return nil
}

func (f *Flow) fail(err error) error {
	f.warn("login failed", "error", err)
	f.moveTo(Failed, err)
	return err
}

func (f *Flow) moveTo(to State, err error) {
	f.mu.Lock()
	from := f.state
	f.state, f.err = to, err
	listeners := append([]Listener(nil), f.listeners...)
	f.mu.Unlock()

	for _, l := range listeners {
		l(Transition{From: from, To: to, Err: err})
	}
}

func (f *Flow) debug(msg string, kv ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, kv...)
	}
}

func (f *Flow) info(msg string, kv ...any) {
	if f.logger != nil {
		f.logger.Info(msg, kv...)
	}
}

func (f *Flow) warn(msg string, kv ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, kv...)
	}
}
