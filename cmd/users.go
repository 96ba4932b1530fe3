package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersShow prints a user profile; without an id it shows the signed-in user.
func (r *Runner) UsersShow(ctx context.Context, cmd *cli.Command) error {
	var id int
	if strings.TrimSpace(cmd.StringArg("id")) == "" {
		if err := r.shell.RequireAuth(); err != nil {
			return err
		}
		id = r.shell.UserID()
	} else {
		var err error
		if id, err = idArg(cmd, "id"); err != nil {
			return err
		}
	}

	user, err := r.client.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	body := fmt.Sprintf("ID: %d\nNickname: %s\n", user.ID, pages.PlainText(user.DisplayName()))
	if user.ProfileImageURL != "" {
		body += fmt.Sprintf("Profile image: %s\n", user.ProfileImageURL)
	}
	return r.writePage("User", body)
}

// UsersUpdate edits the signed-in user's profile and refreshes the stored session.
func (r *Runner) UsersUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.shell.RequireAuth(); err != nil {
		return err
	}

	update := models.UserUpdate{
		Nickname:        strings.TrimSpace(cmd.String("nickname")),
		ProfileImageURL: strings.TrimSpace(cmd.String("profile-image")),
	}
	if update.Nickname == "" && update.ProfileImageURL == "" {
		return fmt.Errorf("%w: --nickname or --profile-image is required", shared.ErrMissingArgument)
	}

	user, err := r.client.UpdateUser(ctx, r.shell.UserID(), update)
	if err != nil {
		return err
	}
	if user.ID == 0 {
		user.ID = r.shell.UserID()
	}

	if err := r.shell.UpdateUser(ctx, *user); err != nil {
		return fmt.Errorf("profile updated but the local session was not: %w", err)
	}
	return r.writePlain("✓ Profile updated: %s\n", user.DisplayName())
}
