// Package server receives the identity provider's redirect during login.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements
// it on a chi mux. [Middleware] wraps handlers in reverse order (last added executes first).
//
// # Callback handler
//
// [CallbackHandler] serves GET /oauth/callback/{provider}. It passes the query to the auth flow,
// which validates it and exchanges the code with the backend, then reports the first outcome on
// a channel. The flow exchanges each code at most once, so a reloaded callback page neither
// repeats the exchange nor sends a second result.
//
// # Lifetime
//
// `bbx auth login` binds a [Server] on the configured loopback address, opens the browser at the
// authorization URL, waits on [CallbackHandler.Wait] and shuts the server down.
package server
