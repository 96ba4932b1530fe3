package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/session"
	"github.com/desertthunder/bbx/internal/shared"
	tu "github.com/desertthunder/bbx/internal/testing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v3"
)

type testRunner struct {
	*Runner
	out   *bytes.Buffer
	store *session.MemoryStore
}

func newTestRunner(t *testing.T, backend *tu.FakeBackend, input string, configure ...func(*RunnerOpts)) *testRunner {
	t.Helper()

	config := shared.DefaultConfig()
	config.API.BaseURL = backend.URL
	config.API.RateLimit = 0

	out := &bytes.Buffer{}
	store := session.NewMemoryStore()
	opts := RunnerOpts{
		Config:  config,
		Store:   store,
		Output:  out,
		Input:   strings.NewReader(input),
		Logger:  shared.NewLogger(&bytes.Buffer{}),
		OpenURL: func(string) error { return nil },
	}
	for _, fn := range configure {
		fn(&opts)
	}

	r, err := NewRunner(opts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return &testRunner{Runner: r, out: out, store: store}
}

// signIn persists a session and restores it the way main does at startup.
func (tr *testRunner) signIn(t *testing.T, id int, nickname, token string) {
	t.Helper()
	ctx := context.Background()
	if err := tr.store.Save(ctx, token, models.UserProfile{ID: id, Nickname: nickname}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := tr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func (tr *testRunner) run(args ...string) error {
	app := &cli.Command{Name: "bbx", Commands: tr.register()}
	return app.Run(context.Background(), append([]string{"bbx"}, args...))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func servePost(backend *tu.FakeBackend, authorID int) {
	backend.JSON("GET /api/posts/3", http.StatusOK, map[string]any{
		"post_id": 3, "title": "Hello board", "content": "first post", "category_id": 1, "user_id": authorID,
	})
	backend.JSON("GET /api/posts/3/comments", http.StatusOK, []map[string]any{
		{"comment_id": 10, "post_id": 3, "user_id": 7, "content": "mine"},
		{"comment_id": 11, "post_id": 3, "user_id": 8, "content": "theirs"},
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner, err := NewRunner(RunnerOpts{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if _, ok := runner.store.(*session.MemoryStore); !ok {
				t.Errorf("expected in-memory session store without a database, got %T", runner.store)
			}
			if runner.runs != nil {
				t.Error("expected no export history without a database")
			}
		})

		t.Run("with invalid base url", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.API.BaseURL = "not a url"

			if _, err := NewRunner(RunnerOpts{Config: config}); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("with database restores the persisted session", func(t *testing.T) {
			db, err := shared.NewDatabase(":memory:")
			if err != nil {
				t.Fatalf("NewDatabase: %v", err)
			}
			defer db.Close()
			if err := shared.RunMigrations(db); err != nil {
				t.Fatalf("RunMigrations: %v", err)
			}

			ctx := context.Background()
			first, err := NewRunner(RunnerOpts{DB: db, Output: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("NewRunner: %v", err)
			}
			if first.runs == nil {
				t.Error("expected export history with a database")
			}
			if err := first.store.Save(ctx, "tok", models.UserProfile{ID: 7, Nickname: "n"}); err != nil {
				t.Fatalf("Save: %v", err)
			}

			second, err := NewRunner(RunnerOpts{DB: db, Output: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("NewRunner: %v", err)
			}
			if err := second.Start(ctx); err != nil {
				t.Fatalf("Start: %v", err)
			}
			if !second.shell.LoggedIn() || second.shell.UserID() != 7 {
				t.Errorf("expected restored session for user 7, got %+v", second.shell.Session())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner, _ := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner, _ := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "{\"key\":\"value\"}\n" {
				t.Errorf("unexpected output %q", got)
			}
		})

		t.Run("returns write errors", func(t *testing.T) {
			runner, _ := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("Confirm", func(t *testing.T) {
		tests := []struct {
			input string
			want  bool
		}{
			{"y\n", true},
			{"YES\n", true},
			{"n\n", false},
			{"\n", false},
			{"", false},
			{"maybe\n", false},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
				runner, _ := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader(tt.input)})

				got, err := runner.Confirm(context.Background(), "Delete?")
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got != tt.want {
					t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
				}
			})
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login exchanges the callback code and persists the session", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		backend.JSON("GET /api/auth/kakao/url", http.StatusOK, "https://kauth.example/oauth/authorize?client_id=x")
		backend.JSON("POST /api/auth/kakao", http.StatusOK, map[string]any{
			"access_token": "tok",
			"user":         map[string]any{"id": 7, "nickname": "n"},
		})

		port := freePort(t)
		callbackURL := fmt.Sprintf("http://127.0.0.1:%d/oauth/callback/kakao", port)

		tr := newTestRunner(t, backend, "", func(opts *RunnerOpts) {
			opts.Config.OAuth.Provider = "kakao"
			opts.Config.OAuth.UseBackendURL = true
			opts.Config.OAuth.RedirectURI = callbackURL
			opts.Config.Server.Host = "127.0.0.1"
			opts.Config.Server.Port = port
			opts.OpenURL = func(authURL string) error {
				go func() {
					resp, err := http.Get(callbackURL + "?code=abc")
					if err == nil {
						resp.Body.Close()
					}
				}()
				return nil
			}
		})

		if err := tr.run("auth", "login", "--timeout", "5s"); err != nil {
			t.Fatalf("login: %v", err)
		}

		if !strings.Contains(tr.out.String(), "Signed in as n") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
		sess, err := tr.store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if sess.AccessToken != "tok" || sess.User.ID != 7 {
			t.Errorf("stored session = %+v", sess)
		}
		if !tr.shell.LoggedIn() || !strings.Contains(tr.shell.Nav(), "[n]") {
			t.Errorf("shell not updated: %q", tr.shell.Nav())
		}
		if n := backend.Count("POST /api/auth/kakao"); n != 1 {
			t.Errorf("expected one exchange, got %d", n)
		}
	})

	t.Run("login with incomplete config", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		tr := newTestRunner(t, backend, "", func(opts *RunnerOpts) {
			opts.Config.OAuth.Provider = ""
		})

		if err := tr.run("auth", "login"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("status when signed out", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")

		if err := tr.run("auth", "status"); err != nil {
			t.Fatalf("status: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Not signed in") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("status shows token expiry without the token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "7",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		tr := newTestRunner(t, tu.NewFakeBackend(t), "")
		tr.signIn(t, 7, "n", token)

		if err := tr.run("auth", "status"); err != nil {
			t.Fatalf("status: %v", err)
		}

		out := tr.out.String()
		if !strings.Contains(out, "Signed in as n (user 7)") || !strings.Contains(out, "Token expires") {
			t.Errorf("unexpected output %q", out)
		}
		if strings.Contains(out, token) {
			t.Error("token must never be printed")
		}
	})

	t.Run("logout clears the store", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("auth", "logout"); err != nil {
			t.Fatalf("logout: %v", err)
		}
		if _, err := tr.store.Load(context.Background()); !errors.Is(err, session.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
		if tr.shell.LoggedIn() {
			t.Error("shell should be anonymous")
		}
	})

	t.Run("tokenExpiry ignores opaque tokens", func(t *testing.T) {
		if _, ok := tokenExpiry("opaque-token"); ok {
			t.Error("expected no expiry for an opaque token")
		}
	})
}

func TestPostCommands(t *testing.T) {
	t.Run("new while signed out sends nothing", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		tr := newTestRunner(t, backend, "")

		err := tr.run("posts", "new", "--title", "T", "--content", "C", "--category", "1")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if n := backend.Count("POST /api/posts"); n != 0 {
			t.Errorf("expected no create call, got %d", n)
		}
	})

	t.Run("new creates a post with the bearer token", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		backend.JSON("POST /api/posts", http.StatusCreated, map[string]any{"post_id": 5, "title": "T"})
		tr := newTestRunner(t, backend, "")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("posts", "new", "--title", "T", "--content", "C", "--category", "1"); err != nil {
			t.Fatalf("new: %v", err)
		}

		reqs := backend.Requests()
		last := reqs[len(reqs)-1]
		if got := last.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if !bytes.Contains(last.Body, []byte(`"title":"T"`)) {
			t.Errorf("unexpected body %s", last.Body)
		}
		if !strings.Contains(tr.out.String(), "Created post #5") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("new rejects invalid input before any call", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		tr := newTestRunner(t, backend, "")
		tr.signIn(t, 7, "n", "tok")

		err := tr.run("posts", "new", "--title", "  ", "--content", "C", "--category", "1")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if n := backend.Count("POST /api/posts"); n != 0 {
			t.Errorf("expected no create call, got %d", n)
		}
	})

	t.Run("list shows the empty state", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		backend.JSON("GET /api/posts", http.StatusOK, []any{})
		backend.JSON("GET /api/categories", http.StatusOK, []any{})
		tr := newTestRunner(t, backend, "")

		if err := tr.run("posts", "list", "--keyword", "zzz"); err != nil {
			t.Fatalf("list: %v", err)
		}
		if !strings.Contains(tr.out.String(), "No posts yet.") {
			t.Errorf("unexpected output %q", tr.out.String())
		}

		reqs := backend.Requests()
		var query string
		for _, r := range reqs {
			if r.Path == "/api/posts" {
				query = r.Query
			}
		}
		if query != "keyword=zzz" {
			t.Errorf("query = %q", query)
		}
	})

	t.Run("show rejects a non-numeric id", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")

		if err := tr.run("posts", "show", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("declined delete makes no call", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		servePost(backend, 7)
		tr := newTestRunner(t, backend, "n\n")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("posts", "delete", "3"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Cancelled") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
		if n := backend.Count("DELETE /api/posts/3"); n != 0 {
			t.Errorf("expected no delete call, got %d", n)
		}
	})

	t.Run("delete with --yes", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		servePost(backend, 7)
		backend.JSON("DELETE /api/posts/3", http.StatusOK, map[string]any{})
		tr := newTestRunner(t, backend, "")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("posts", "delete", "--yes", "3"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if n := backend.Count("DELETE /api/posts/3"); n != 1 {
			t.Errorf("expected one delete call, got %d", n)
		}
	})

	t.Run("delete by another user is forbidden", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		servePost(backend, 8)
		tr := newTestRunner(t, backend, "y\n")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("posts", "delete", "3"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if n := backend.Count("DELETE /api/posts/3"); n != 0 {
			t.Errorf("expected no delete call, got %d", n)
		}
	})

	t.Run("export writes files and a manifest", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		servePost(backend, 7)
		dir := filepath.Join(t.TempDir(), "out")
		tr := newTestRunner(t, backend, "")

		if err := tr.run("posts", "export", "--id", "3", "--output", dir, "--rate", "100"); err != nil {
			t.Fatalf("export: %v", err)
		}

		if !strings.Contains(tr.out.String(), "Exported 1/1 posts") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "post_3.json"))
	})
}

func TestCommentCommands(t *testing.T) {
	t.Run("declined delete leaves the comment", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		servePost(backend, 7)
		tr := newTestRunner(t, backend, "n\n")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("comments", "delete", "--post", "3", "10"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if n := backend.Count("DELETE /api/posts/3/comments/10"); n != 0 {
			t.Errorf("expected no delete call, got %d", n)
		}
	})

	t.Run("another user's comment is forbidden", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		servePost(backend, 7)
		tr := newTestRunner(t, backend, "y\n")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("comments", "delete", "--post", "3", "11"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("add while signed out", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		tr := newTestRunner(t, backend, "")

		err := tr.run("comments", "add", "--content", "hi", "3")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if !strings.Contains(tr.out.String(), "Sign in to write a comment.") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("add posts the comment", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		backend.JSON("POST /api/posts/3/comments", http.StatusCreated, map[string]any{
			"comment_id": 12, "post_id": 3, "user_id": 7, "content": "hi",
		})
		tr := newTestRunner(t, backend, "")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("comments", "add", "--content", "hi", "3"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Added comment #12") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})
}

func TestUserCommands(t *testing.T) {
	t.Run("update refreshes the stored profile", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		backend.JSON("PUT /api/users/7", http.StatusOK, map[string]any{"user_id": 7, "nickname": "renamed"})
		tr := newTestRunner(t, backend, "")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("users", "update", "--nickname", "renamed"); err != nil {
			t.Fatalf("update: %v", err)
		}

		sess, err := tr.store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if sess.User.Nickname != "renamed" || sess.AccessToken != "tok" {
			t.Errorf("stored session = %+v", sess)
		}
	})

	t.Run("update requires a field", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")
		tr.signIn(t, 7, "n", "tok")

		if err := tr.run("users", "update"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("get prints JSON", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		backend.JSON("GET /api/categories", http.StatusOK, []map[string]any{{"category_id": 1, "category_status": "FREE"}})
		tr := newTestRunner(t, backend, "")

		if err := tr.run("api", "get", "/api/categories"); err != nil {
			t.Fatalf("get: %v", err)
		}
		if !strings.Contains(tr.out.String(), `"category_status": "FREE"`) {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("get surfaces backend errors", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")

		if err := tr.run("api", "get", "/api/missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("post requires a body", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")

		if err := tr.run("api", "post", "/api/posts"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("post rejects malformed fields", func(t *testing.T) {
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")

		if err := tr.run("api", "post", "--field", "novalue", "/api/posts"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (string, string) {
		t.Helper()
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "bbx.db")
		t.Setenv("BBX_DB_PATH", dbPath)

		db, err := shared.OpenMigrated(shared.DatabaseConfig{Path: dbPath})
		if err != nil {
			t.Fatalf("OpenMigrated: %v", err)
		}
		defer db.Close()
		if _, err := db.ExecContext(ctx, "INSERT INTO kv (key, value) VALUES ('access_token', 'tok')"); err != nil {
			t.Fatalf("seed kv: %v", err)
		}
		return filepath.Join(dir, "config.toml"), dbPath
	}

	kvRows := func(t *testing.T, dbPath string) int {
		t.Helper()
		db, err := shared.OpenMigrated(shared.DatabaseConfig{Path: dbPath})
		if err != nil {
			t.Fatalf("OpenMigrated: %v", err)
		}
		defer db.Close()
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv").Scan(&n); err != nil {
			t.Fatalf("count kv: %v", err)
		}
		return n
	}

	t.Run("creates config and keeps data", func(t *testing.T) {
		configPath, dbPath := seed(t)
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")

		if err := tr.run("setup", "--config", configPath); err != nil {
			t.Fatalf("setup: %v", err)
		}
		tu.AssertFileExists(t, configPath)
		if n := kvRows(t, dbPath); n != 1 {
			t.Errorf("expected data kept without --reset, got %d rows", n)
		}
	})

	t.Run("reset with --yes wipes the session", func(t *testing.T) {
		configPath, dbPath := seed(t)
		tr := newTestRunner(t, tu.NewFakeBackend(t), "")
		tr.signIn(t, 7, "kim", "tok")

		if err := tr.run("setup", "--config", configPath, "--reset", "--yes"); err != nil {
			t.Fatalf("setup --reset: %v", err)
		}
		if n := kvRows(t, dbPath); n != 0 {
			t.Errorf("expected empty kv after reset, got %d rows", n)
		}
		if tr.shell.LoggedIn() {
			t.Error("shell should be signed out after reset")
		}
		if !strings.Contains(tr.out.String(), "Database reset") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("declined reset keeps data", func(t *testing.T) {
		configPath, dbPath := seed(t)
		tr := newTestRunner(t, tu.NewFakeBackend(t), "n\n")

		if err := tr.run("setup", "--config", configPath, "--reset"); err != nil {
			t.Fatalf("setup --reset: %v", err)
		}
		if n := kvRows(t, dbPath); n != 1 {
			t.Errorf("expected data kept, got %d rows", n)
		}
		if !strings.Contains(tr.out.String(), "Reset skipped") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})
}
