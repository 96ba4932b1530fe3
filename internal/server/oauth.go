package server

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/go-chi/chi/v5"
)

// CallbackPattern is the chi route for provider redirects.
const CallbackPattern = "/oauth/callback/{provider}"

// Exchanger completes a login from the redirect's query parameters.
type Exchanger interface {
	HandleCallback(ctx context.Context, query url.Values) (*models.Session, error)
}

// CallbackResult is the outcome of the first callback the handler served.
type CallbackResult struct {
	Session *models.Session
	Err     error
}

// CallbackHandler receives the provider redirect on the loopback server and hands the query to
// the auth flow. The first outcome is delivered on [CallbackHandler.Result]; later requests (a
// browser reload, say) are answered from the flow's own de-duplication without a second send.
type CallbackHandler struct {
	provider string
	flow     Exchanger
	logger   *log.Logger

	once    sync.Once
	results chan CallbackResult
}

// NewCallbackHandler creates a handler that accepts redirects for provider only.
func NewCallbackHandler(provider string, flow Exchanger, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{
		provider: provider,
		flow:     flow,
		logger:   logger,
		results:  make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{CallbackPattern}
}

// ServeHTTP runs the exchange and renders a page telling the user whether to return to the terminal.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p := chi.URLParam(r, "provider"); p != h.provider {
		http.NotFound(w, r)
		return
	}

	// Closing the browser tab must not abort an exchange already sent to the backend.
	ctx := context.WithoutCancel(r.Context())
	sess, err := h.flow.HandleCallback(ctx, r.URL.Query())
	h.send(CallbackResult{Session: sess, Err: err})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := resultPage{Title: "Signed in", Message: "You can close this window and return to the terminal."}
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("callback failed", "provider", h.provider, "error", err)
		}
		w.WriteHeader(http.StatusBadRequest)
		page = resultPage{Title: "Sign-in failed", Message: err.Error(), Failed: true}
	} else {
		page.Message = "Welcome, " + sess.User.DisplayName() + ". " + page.Message
	}

	if err := resultTmpl.Execute(w, page); err != nil && h.logger != nil {
		h.logger.Error("failed to render callback page", "error", err)
	}
}

// Result receives exactly one [CallbackResult] and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

// Wait blocks until the first callback or ctx ends.
func (h *CallbackHandler) Wait(ctx context.Context) (*models.Session, error) {
	select {
	case res := <-h.results:
		return res.Session, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *CallbackHandler) send(res CallbackResult) {
	h.once.Do(func() {
		h.results <- res
		close(h.results)
	})
}

type resultPage struct {
	Title   string
	Message string
	Failed  bool
}

var resultTmpl = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { margin: 0 0 1rem 0; color: #7D56F4; }
        h1.failed { color: #D0021B; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1{{if .Failed}} class="failed"{{end}}>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))
