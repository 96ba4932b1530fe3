package pages

import (
	"context"
	"sync"

	"github.com/desertthunder/bbx/internal/models"
)

// Ticket identifies one list query. Only the most recent ticket's result is applied.
type Ticket uint64

// PostList is the post list view (and, with a limit, the home view).
//
// Every filter change issues a new [Ticket]; a response carrying an older ticket is discarded
// so a slow earlier query never overwrites a later one.
type PostList struct {
	limit int

	mu         sync.Mutex
	latest     Ticket
	filter     models.PostFilter
	posts      []models.Post
	categories map[int]models.Category
	err        error
	loading    bool
}

// NewPostList creates the full list view.
func NewPostList() *PostList {
	return &PostList{}
}

// NewHomeList creates the home view, which shows the first [HomeLimit] posts.
func NewHomeList() *PostList {
	return &PostList{limit: HomeLimit}
}

// Query records filter as the current query and returns its ticket.
func (l *PostList) Query(filter models.PostFilter) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest++
	l.filter = filter
	l.loading = true
	return l.latest
}

// Resolve applies a query result if t is still the latest ticket and reports whether it did.
// On error the previous posts stay in place.
func (l *PostList) Resolve(t Ticket, posts []models.Post, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t != l.latest {
		return false
	}

	l.loading = false
	l.err = err
	if err != nil {
		return true
	}
	if l.limit > 0 && len(posts) > l.limit {
		posts = posts[:l.limit]
	}
	l.posts = posts
	return true
}

// Load runs a query against backend and resolves it.
func (l *PostList) Load(ctx context.Context, backend Backend, filter models.PostFilter) error {
	t := l.Query(filter)
	posts, err := backend.ListPosts(ctx, filter)
	l.Resolve(t, posts, err)
	return err
}

// SetCategories provides names for posts that do not embed their category.
func (l *PostList) SetCategories(categories []models.Category) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.categories = CategoryIndex(categories)
}

func (l *PostList) Posts() []models.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Post(nil), l.posts...)
}

func (l *PostList) Filter() models.PostFilter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

func (l *PostList) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *PostList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Empty reports a loaded, empty result.
func (l *PostList) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.loading && l.err == nil && len(l.posts) == 0
}

// Render draws the list, any error, and the empty-state message when nothing matched.
func (l *PostList) Render() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := RenderError(l.err)
	if l.loading && len(l.posts) == 0 {
		return out + "Loading...\n"
	}
	return out + RenderPosts(l.posts, l.categories)
}
