package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/shared"
)

// FormMode is create or edit.
type FormMode int

const (
	CreateMode FormMode = iota
	EditMode
)

// PostForm is the create/edit form view.
type PostForm struct {
	mode    FormMode
	postID  int
	backend Backend
	viewer  Viewer

	Input models.PostInput

	loaded bool
	saved  *models.Post
}

// NewCreateForm starts a blank form.
func NewCreateForm(backend Backend, viewer Viewer) *PostForm {
	return &PostForm{mode: CreateMode, backend: backend, viewer: viewer, loaded: true}
}

// NewEditForm starts an edit form for postID; call [PostForm.Load] to prefill it.
func NewEditForm(postID int, backend Backend, viewer Viewer) *PostForm {
	return &PostForm{mode: EditMode, postID: postID, backend: backend, viewer: viewer}
}

func (f *PostForm) Mode() FormMode { return f.mode }
func (f *PostForm) PostID() int    { return f.postID }

// Title is the page heading for the mode.
func (f *PostForm) Title() string {
	if f.mode == EditMode {
		return "Edit post"
	}
	return "New post"
}

// Load fetches the existing post in edit mode and prefills the input.
// Only the author may edit; anyone else gets [shared.ErrForbidden].
func (f *PostForm) Load(ctx context.Context) error {
	if f.mode != EditMode {
		return nil
	}
	if err := f.viewer.RequireAuth(); err != nil {
		return err
	}

	post, err := f.backend.GetPost(ctx, f.postID)
	if err != nil {
		return err
	}
	return f.Prefill(post)
}

// Prefill copies post into the input after checking ownership.
func (f *PostForm) Prefill(post *models.Post) error {
	if !CanModifyPost(f.viewer.UserID(), post) {
		return fmt.Errorf("%w: only the author can edit this post", shared.ErrForbidden)
	}
	f.Input = models.PostInput{Title: post.Title, Content: post.Content, CategoryID: post.CategoryID}
	f.loaded = true
	return nil
}

// Loaded reports whether the form is ready for input.
func (f *PostForm) Loaded() bool { return f.loaded }

// Saved is the post returned by the last successful submit.
func (f *PostForm) Saved() *models.Post { return f.saved }

// Submit validates the input and creates or updates the post. On success the caller routes to
// the post list.
func (f *PostForm) Submit(ctx context.Context) (*models.Post, error) {
	if err := f.viewer.RequireAuth(); err != nil {
		return nil, err
	}
	if f.mode == EditMode && !f.loaded {
		return nil, fmt.Errorf("%w: post not loaded", shared.ErrInvalidInput)
	}

	in := models.PostInput{
		Title:      strings.TrimSpace(f.Input.Title),
		Content:    strings.TrimSpace(f.Input.Content),
		CategoryID: f.Input.CategoryID,
	}
	if problems := in.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(problems, ", "))
	}

	var (
		post *models.Post
		err  error
	)
	if f.mode == EditMode {
		post, err = f.backend.UpdatePost(ctx, f.postID, in)
	} else {
		post, err = f.backend.CreatePost(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	f.saved = post
	return post, nil
}
