package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/session"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/desertthunder/bbx/internal/shell"
)

type fakeBackend struct {
	mu       sync.Mutex
	calls    map[string]int
	posts    map[int]*models.Post
	comments map[int][]models.Comment
	created  []models.PostInput
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string]int{},
		posts: map[int]*models.Post{
			3: {ID: 3, Title: "Hello board", Content: "first", CategoryID: 1, AuthorID: 1, AuthorNickname: "alice"},
		},
		comments: map[int][]models.Comment{
			3: {
				{ID: 10, PostID: 3, AuthorUserID: 1, Content: "mine", User: &models.UserProfile{ID: 1, Nickname: "alice"}},
				{ID: 11, PostID: 3, AuthorUserID: 2, Content: "theirs", User: &models.UserProfile{ID: 2, Nickname: "bob"}},
			},
		},
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[call]++
}

func (f *fakeBackend) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeBackend) ListPosts(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	f.record("ListPosts")
	if filter.Keyword != "" {
		return []models.Post{{ID: 50, Title: filter.Keyword + " result"}}, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeBackend) GetPost(_ context.Context, id int) (*models.Post, error) {
	f.record("GetPost")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeBackend) CreatePost(_ context.Context, in models.PostInput) (*models.Post, error) {
	f.record("CreatePost")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return &models.Post{ID: 77, Title: in.Title, Content: in.Content, CategoryID: in.CategoryID}, nil
}

func (f *fakeBackend) UpdatePost(_ context.Context, id int, in models.PostInput) (*models.Post, error) {
	f.record("UpdatePost")
	return &models.Post{ID: id, Title: in.Title, Content: in.Content, CategoryID: in.CategoryID}, nil
}

func (f *fakeBackend) DeletePost(context.Context, int) error {
	f.record("DeletePost")
	return nil
}

func (f *fakeBackend) ListComments(_ context.Context, postID int) ([]models.Comment, error) {
	f.record("ListComments")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.comments[postID]...), nil
}

func (f *fakeBackend) CreateComment(_ context.Context, postID int, content string) (*models.Comment, error) {
	f.record("CreateComment")
	return &models.Comment{ID: 12, PostID: postID, AuthorUserID: 1, Content: content}, nil
}

func (f *fakeBackend) UpdateComment(_ context.Context, commentID int, content string) (*models.Comment, error) {
	f.record("UpdateComment")
	return &models.Comment{ID: commentID, AuthorUserID: 1, Content: content}, nil
}

func (f *fakeBackend) DeleteComment(context.Context, int, int) error {
	f.record("DeleteComment")
	return nil
}

func (f *fakeBackend) ListCategories(context.Context) ([]models.Category, error) {
	f.record("ListCategories")
	return []models.Category{
		{ID: 1, Status: models.CategoryFree},
		{ID: 2, Status: models.CategoryTip},
	}, nil
}

func anonymous() *shell.Shell {
	return shell.New(session.NewMemoryStore(), nil)
}

func signedIn(id int, nickname string) *shell.Shell {
	s := shell.New(session.NewMemoryStore(), nil)
	s.SetSession(&models.Session{AccessToken: "tok", User: models.UserProfile{ID: id, Nickname: nickname}})
	return s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and returns the application messages it produces. Commands that do not
// finish promptly (cursor blinks) are abandoned.
func collect(cmd tea.Cmd) []Msg {
	if cmd == nil {
		return nil
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		switch msg := msg.(type) {
		case Msg:
			return []Msg{msg}
		case tea.BatchMsg:
			var out []Msg
			for _, c := range msg {
				out = append(out, collect(c)...)
			}
			return out
		}
	case <-time.After(200 * time.Millisecond):
	}
	return nil
}

// press sends key and feeds every resulting application message back into the model.
func press(m *Model, key tea.KeyMsg) {
	_, cmd := m.Update(key)
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}
}

func openDetail(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.navigate("/posts/3")
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}
	if m.view != DetailView || m.detail.Post() == nil {
		t.Fatalf("detail not loaded: view=%v err=%v", m.view, m.detail.Err())
	}
}

func TestListView(t *testing.T) {
	ctx := context.Background()

	t.Run("Stale search results are ignored", func(t *testing.T) {
		m := NewModel(ctx, newFakeBackend(), anonymous(), "/posts")
		m.navigate("/posts")

		m.Update(runes("/"))
		if !m.searching {
			t.Fatal("expected search mode")
		}

		_, cmdA := m.Update(runes("a"))
		_, cmdAB := m.Update(runes("b"))
		aMsgs, abMsgs := collect(cmdA), collect(cmdAB)
		if len(aMsgs) != 1 || len(abMsgs) != 1 {
			t.Fatalf("expected one fetch per keystroke, got %d and %d", len(aMsgs), len(abMsgs))
		}

		m.Update(abMsgs[0])
		m.Update(aMsgs[0])

		posts := m.posts.Posts()
		if len(posts) != 1 || posts[0].Title != "ab result" {
			t.Errorf("expected ab's results, got %+v", posts)
		}
		items := m.postList.Items()
		if len(items) != 1 || !strings.Contains(items[0].(postItem).Title(), "ab result") {
			t.Errorf("list items = %+v", items)
		}
	})

	t.Run("Home shows the empty state", func(t *testing.T) {
		b := newFakeBackend()
		b.posts = map[int]*models.Post{}
		m := NewModel(ctx, b, anonymous(), "/")
		for _, msg := range collect(m.Init()) {
			m.Update(msg)
		}

		if m.view != HomeView {
			t.Fatalf("view = %v", m.view)
		}
		if out := m.View(); !strings.Contains(out, "No posts yet.") {
			t.Errorf("expected empty state, got %q", out)
		}
	})

	t.Run("Category filter cycles through loaded categories", func(t *testing.T) {
		m := NewModel(ctx, newFakeBackend(), anonymous(), "/posts")
		for _, msg := range collect(m.Init()) {
			m.Update(msg)
		}

		if got := m.categoryName(); got != "All" {
			t.Errorf("categoryName = %q", got)
		}
		m.Update(runes("c"))
		if m.categoryID() != 1 || m.categoryName() != "Free board" {
			t.Errorf("expected first category, got %d %q", m.categoryID(), m.categoryName())
		}
		m.Update(runes("c"))
		m.Update(runes("c"))
		if m.categoryID() != 0 {
			t.Errorf("expected wrap to all, got %d", m.categoryID())
		}
	})

	t.Run("Nav shows the signed-in user", func(t *testing.T) {
		m := NewModel(ctx, newFakeBackend(), signedIn(1, "alice"), "/")
		if out := m.View(); !strings.Contains(out, "alice") {
			t.Errorf("expected nickname in frame, got %q", out)
		}
	})
}

func TestLoginGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("New post while signed out shows login required", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, anonymous(), "/")
		m.navigate("/")

		m.Update(runes("n"))
		if m.view != LoginRequiredView {
			t.Fatalf("view = %v", m.view)
		}
		if out := m.View(); !strings.Contains(out, "You need to sign in") {
			t.Errorf("expected login message, got %q", out)
		}
		if b.called("CreatePost") != 0 {
			t.Error("no post should be created")
		}
	})

	t.Run("Comment while signed out shows the notice", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, anonymous(), "/")
		openDetail(t, m)

		m.Update(runes("a"))
		if m.commenting {
			t.Error("comment input must stay closed")
		}
		if m.status != "Sign in to write a comment." {
			t.Errorf("status = %q", m.status)
		}
	})
}

func TestDetailView(t *testing.T) {
	ctx := context.Background()

	t.Run("Declined comment delete makes no call", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		openDetail(t, m)

		m.Update(runes("x"))
		if m.view != ConfirmView {
			t.Fatalf("view = %v", m.view)
		}
		m.Update(runes("n"))

		if m.view != DetailView {
			t.Errorf("view = %v", m.view)
		}
		if b.called("DeleteComment") != 0 {
			t.Error("declined delete must not call the backend")
		}
		if n := len(m.detail.Comments()); n != 2 {
			t.Errorf("comments = %d", n)
		}
	})

	t.Run("Confirmed comment delete removes it", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		openDetail(t, m)

		m.Update(runes("x"))
		press(m, runes("y"))

		if b.called("DeleteComment") != 1 {
			t.Errorf("DeleteComment calls = %d", b.called("DeleteComment"))
		}
		comments := m.detail.Comments()
		if len(comments) != 1 || comments[0].ID != 11 {
			t.Errorf("comments = %+v", comments)
		}
		if m.status != "Comment deleted" {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("Another user's comment cannot be deleted", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		openDetail(t, m)

		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(runes("x"))

		if m.view != DetailView {
			t.Errorf("view = %v", m.view)
		}
		if m.err == nil {
			t.Error("expected forbidden error")
		}
	})

	t.Run("Confirmed post delete returns to the list", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		openDetail(t, m)

		m.Update(runes("d"))
		if m.view != ConfirmView {
			t.Fatalf("view = %v", m.view)
		}
		press(m, runes("y"))

		if b.called("DeletePost") != 1 {
			t.Errorf("DeletePost calls = %d", b.called("DeletePost"))
		}
		if m.view != ListView || m.status != "Post deleted" {
			t.Errorf("view = %v status = %q", m.view, m.status)
		}
	})

	t.Run("Non-author cannot delete the post", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(2, "bob"), "/")
		openDetail(t, m)

		m.Update(runes("d"))
		if m.view != DetailView || m.err == nil {
			t.Errorf("view = %v err = %v", m.view, m.err)
		}
	})

	t.Run("Adds a comment", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		openDetail(t, m)

		m.Update(runes("a"))
		if !m.commenting {
			t.Fatal("expected comment input")
		}
		m.Update(runes("nice post"))
		press(m, tea.KeyMsg{Type: tea.KeyEnter})

		if b.called("CreateComment") != 1 {
			t.Errorf("CreateComment calls = %d", b.called("CreateComment"))
		}
		if n := len(m.detail.Comments()); n != 3 {
			t.Errorf("comments = %d", n)
		}
		if m.commenting || m.comment.Value() != "" {
			t.Error("comment input should reset")
		}
	})
}

func TestFormView(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a post", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		for _, msg := range collect(m.Init()) {
			m.Update(msg)
		}

		m.Update(runes("n"))
		if m.view != FormView {
			t.Fatalf("view = %v", m.view)
		}

		m.Update(runes("Hello"))
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m.Update(runes("Body text"))
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
		press(m, tea.KeyMsg{Type: tea.KeyCtrlS})

		if len(b.created) != 1 {
			t.Fatalf("CreatePost calls = %d", len(b.created))
		}
		got := b.created[0]
		if got.Title != "Hello" || got.Content != "Body text" || got.CategoryID != 2 {
			t.Errorf("input = %+v", got)
		}
		if m.view != ListView {
			t.Errorf("view = %v", m.view)
		}
	})

	t.Run("Invalid input stays on the form", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/posts/new")
		m.navigate("/posts/new")

		press(m, tea.KeyMsg{Type: tea.KeyCtrlS})

		if m.view != FormView || m.err == nil {
			t.Errorf("view = %v err = %v", m.view, m.err)
		}
		if b.called("CreatePost") != 0 {
			t.Error("invalid input must not reach the backend")
		}
	})

	t.Run("Edit prefills from the post", func(t *testing.T) {
		b := newFakeBackend()
		m := NewModel(ctx, b, signedIn(1, "alice"), "/")
		for _, msg := range collect(m.Init()) {
			m.Update(msg)
		}
		openDetail(t, m)

		press(m, runes("e"))
		if m.view != FormView {
			t.Fatalf("view = %v", m.view)
		}
		if m.titleInput.Value() != "Hello board" || m.contentInput.Value() != "first" {
			t.Errorf("prefill = %q %q", m.titleInput.Value(), m.contentInput.Value())
		}
		if m.formCategoryID() != 1 {
			t.Errorf("category = %d", m.formCategoryID())
		}
	})
}
