package services

import (
	"context"
	"net/http"
)

type formContentTypeKey struct{}

// withFormContentType marks the request as multipart; the value is the writer's boundary header.
func withFormContentType(ctx context.Context, contentType string) context.Context {
	return context.WithValue(ctx, formContentTypeKey{}, contentType)
}

func formContentType(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(formContentTypeKey{}).(string)
	return v, ok && v != ""
}

// bearerTransport is the request interceptor.
//
// It attaches the current bearer token and, for multipart bodies, replaces the default
// JSON content type with the multipart boundary header.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if t.tokens != nil {
		if token, ok := t.tokens.Token(req.Context()); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if ct, ok := formContentType(req.Context()); ok {
		req.Header.Del("Content-Type")
		req.Header.Set("Content-Type", ct)
	}

	return t.base.RoundTrip(req)
}
