package main

import (
	"context"

	"github.com/desertthunder/bbx/internal/pages"
	"github.com/urfave/cli/v3"
)

// CommentsAdd comments on a post.
func (r *Runner) CommentsAdd(ctx context.Context, cmd *cli.Command) error {
	postID, err := idArg(cmd, "post")
	if err != nil {
		return err
	}

	detail := pages.NewPostDetail(postID, r.client, r.shell, r)
	if !detail.CanComment() {
		r.writePlain("%s\n", pages.LoginToCommentNotice)
		return r.shell.RequireAuth()
	}

	comment, err := detail.AddComment(ctx, cmd.String("content"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added comment #%d to post #%d\n", comment.ID, postID)
}

// CommentsEdit replaces the text of one of the user's comments.
func (r *Runner) CommentsEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.shell.RequireAuth(); err != nil {
		return err
	}

	detail := pages.NewPostDetail(cmd.Int("post"), r.client, r.shell, r)
	if err := detail.Load(ctx); err != nil {
		return err
	}

	if _, err := detail.EditComment(ctx, id, cmd.String("content")); err != nil {
		return err
	}
	return r.writePlain("✓ Updated comment #%d\n", id)
}

// CommentsDelete deletes one of the user's comments after confirmation.
func (r *Runner) CommentsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.shell.RequireAuth(); err != nil {
		return err
	}

	detail := pages.NewPostDetail(cmd.Int("post"), r.client, r.shell, r.confirmer(cmd))
	if err := detail.Load(ctx); err != nil {
		return err
	}

	deleted, err := detail.DeleteComment(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return r.writePlain("Cancelled\n")
	}
	return r.writePlain("✓ Deleted comment #%d\n", id)
}
