// Package services implements the HTTP client for the board's REST backend.
//
// # Pipeline
//
// [Client] wraps an [http.Client] whose transport chain is:
//
//	bearerTransport -> base RoundTripper
//
// Before the transport runs, every request gets the default headers (Accept, JSON Content-Type
// when there is a body, User-Agent, X-Request-ID). The bearer transport reads the current token
// from a [TokenSource] and, for multipart requests built by [Client.PostForm], swaps the JSON
// content type for the multipart boundary header.
//
// A cookie jar backed by the public suffix list keeps backend cookies between calls.
//
// # Error Handling
//
// Non-2xx replies are normalized into [*APIError], whose Detail is read from FastAPI's
// {"detail": ...} body. It matches the shared sentinels:
//   - [shared.ErrAPIRequest] : any backend-reported failure
//   - [shared.ErrNotAuthenticated] : 401
//   - [shared.ErrForbidden] : 403
//   - [shared.ErrNotFound] : 404
//
// Network failures wrap [shared.ErrServiceUnavailable]. Nothing is retried.
//
// # Endpoints
//
// Typed methods map one-to-one onto the backend routes (posts, comments, categories, users,
// auth). [Client.Get], [Client.PostJSON] and [Client.PostForm] expose the raw pipeline for the
// api debugging command.
package services
