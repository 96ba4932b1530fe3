package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/shared"
)

const (
	DeletePostPrompt    = "Delete this post?"
	DeleteCommentPrompt = "Delete this comment?"
)

// CanModifyPost reports whether viewerID authored p. Anonymous viewers (0) own nothing.
func CanModifyPost(viewerID int, p *models.Post) bool {
	return viewerID != 0 && p != nil && p.AuthorID == viewerID
}

// CanModifyComment reports whether viewerID authored c.
func CanModifyComment(viewerID int, c models.Comment) bool {
	return viewerID != 0 && c.AuthorUserID == viewerID
}

// PostDetail is the single post view with its comments.
type PostDetail struct {
	postID  int
	backend Backend
	viewer  Viewer
	confirm Confirmer

	mu       sync.Mutex
	post     *models.Post
	comments []models.Comment
	err      error
	deleted  bool
}

// NewPostDetail creates the view for postID. Destructive actions ask confirm first.
func NewPostDetail(postID int, backend Backend, viewer Viewer, confirm Confirmer) *PostDetail {
	return &PostDetail{postID: postID, backend: backend, viewer: viewer, confirm: confirm}
}

func (d *PostDetail) PostID() int { return d.postID }

// Load fetches the post and its comments. On failure the view keeps whatever it had.
func (d *PostDetail) Load(ctx context.Context) error {
	post, err := d.backend.GetPost(ctx, d.postID)
	if err != nil {
		return d.setErr(err)
	}
	comments, err := d.backend.ListComments(ctx, d.postID)
	if err != nil {
		return d.setErr(err)
	}

	d.Apply(post, comments)
	return nil
}

// Apply installs fetched data; used by front ends that fetch asynchronously.
func (d *PostDetail) Apply(post *models.Post, comments []models.Comment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.post, d.comments, d.err = post, comments, nil
}

func (d *PostDetail) Post() *models.Post {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.post
}

func (d *PostDetail) Comments() []models.Comment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Comment(nil), d.comments...)
}

func (d *PostDetail) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Deleted reports that the post was removed and the view should route back to the list.
func (d *PostDetail) Deleted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleted
}

// CanEditPost gates the edit and delete actions on the signed-in user's id.
func (d *PostDetail) CanEditPost() bool {
	return CanModifyPost(d.viewer.UserID(), d.Post())
}

// CanDeleteComment gates the comment delete action on the signed-in user's id.
func (d *PostDetail) CanDeleteComment(c models.Comment) bool {
	return CanModifyComment(d.viewer.UserID(), c)
}

// CanComment reports whether the comment form is shown.
func (d *PostDetail) CanComment() bool {
	return d.viewer.LoggedIn()
}

// DeletePost asks for confirmation, then deletes. Declining returns false and no error without calling the backend.
func (d *PostDetail) DeletePost(ctx context.Context) (bool, error) {
	if err := d.viewer.RequireAuth(); err != nil {
		return false, err
	}
	if !d.CanEditPost() {
		return false, fmt.Errorf("%w: only the author can delete this post", shared.ErrForbidden)
	}

	ok, err := d.confirm.Confirm(ctx, DeletePostPrompt)
	if err != nil || !ok {
		return false, err
	}

	if err := d.backend.DeletePost(ctx, d.postID); err != nil {
		return false, d.setErr(err)
	}

	d.mu.Lock()
	d.deleted = true
	d.mu.Unlock()
	return true, nil
}

// DeleteComment asks for confirmation, then deletes and drops the comment from the list.
func (d *PostDetail) DeleteComment(ctx context.Context, commentID int) (bool, error) {
	if err := d.viewer.RequireAuth(); err != nil {
		return false, err
	}

	c, ok := d.findComment(commentID)
	if !ok {
		return false, fmt.Errorf("comment %d: %w", commentID, shared.ErrNotFound)
	}
	if !d.CanDeleteComment(c) {
		return false, fmt.Errorf("%w: only the author can delete this comment", shared.ErrForbidden)
	}

	confirmed, err := d.confirm.Confirm(ctx, DeleteCommentPrompt)
	if err != nil || !confirmed {
		return false, err
	}

	if err := d.backend.DeleteComment(ctx, d.postID, commentID); err != nil {
		return false, d.setErr(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.comments[:0:0]
	for _, existing := range d.comments {
		if existing.ID != commentID {
			kept = append(kept, existing)
		}
	}
	d.comments = kept
	return true, nil
}

// AddComment posts a comment and appends it. Blank text is rejected before any call.
func (d *PostDetail) AddComment(ctx context.Context, content string) (*models.Comment, error) {
	if err := d.viewer.RequireAuth(); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", shared.ErrInvalidInput)
	}

	c, err := d.backend.CreateComment(ctx, d.postID, content)
	if err != nil {
		return nil, d.setErr(err)
	}

	d.mu.Lock()
	d.comments = append(d.comments, *c)
	d.mu.Unlock()
	return c, nil
}

// EditComment replaces the text of one of the viewer's comments.
func (d *PostDetail) EditComment(ctx context.Context, commentID int, content string) (*models.Comment, error) {
	if err := d.viewer.RequireAuth(); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", shared.ErrInvalidInput)
	}

	c, ok := d.findComment(commentID)
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", commentID, shared.ErrNotFound)
	}
	if !d.CanDeleteComment(c) {
		return nil, fmt.Errorf("%w: only the author can edit this comment", shared.ErrForbidden)
	}

	updated, err := d.backend.UpdateComment(ctx, commentID, content)
	if err != nil {
		return nil, d.setErr(err)
	}

	d.mu.Lock()
	for i := range d.comments {
		if d.comments[i].ID == commentID {
			d.comments[i] = *updated
		}
	}
	d.mu.Unlock()
	return updated, nil
}

// Render draws the post, the comments and the comment form notice.
func (d *PostDetail) Render(width int) string {
	post, comments, err := d.Post(), d.Comments(), d.Err()

	var b strings.Builder
	b.WriteString(RenderError(err))
	if post == nil {
		if err == nil {
			b.WriteString("Loading...\n")
		}
		return b.String()
	}

	b.WriteString(RenderPost(post, nil, width))
	fmt.Fprintf(&b, "\nComments (%d)\n", len(comments))
	b.WriteString(RenderComments(comments, d.viewer.UserID()))
	if !d.CanComment() {
		b.WriteString("\n" + mutedStyle.Render(LoginToCommentNotice) + "\n")
	}
	return b.String()
}

func (d *PostDetail) findComment(id int) (models.Comment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.comments {
		if c.ID == id {
			return c, true
		}
	}
	return models.Comment{}, false
}

func (d *PostDetail) setErr(err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
	return err
}
