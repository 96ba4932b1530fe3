// Package pages implements the board's page views independent of any terminal front end.
//
// Each view holds page-scoped copies of backend data and the local state of in-progress input.
// Views are handed their collaborators explicitly: a [Backend] for data and a [Viewer] (the
// application shell) for the signed-in user. The CLI prints what the views render; the TUI
// drives the same views from bubbletea messages.
//
// Failures from the backend never clear what a view already shows: the view records the error
// for display and keeps its previous data.
package pages

import (
	"context"

	"github.com/desertthunder/bbx/internal/models"
)

const (
	HomeLimit = 6

	EmptyPostsMessage    = "No posts yet."
	EmptyCommentsMessage = "No comments yet."
	LoginToCommentNotice = "Sign in to write a comment."
	LoginRequiredMessage = "You need to sign in to do that."
)

// Backend is the slice of the API client the page views call.
type Backend interface {
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, id int) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int) error
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID int, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int) error
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Viewer is who is looking at the page.
type Viewer interface {
	UserID() int
	LoggedIn() bool
	RequireAuth() error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Always answers every prompt with answer.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return answer, nil })
}
