// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/bbx/internal/formatter"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}
}

// setupCommand writes a config file and prepares the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Drop and recreate the local database (signs you out, forgets export history)",
			},
			yesFlag(),
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in through the configured OAuth provider",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL without opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the provider to redirect back",
						Value: 5 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in user",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// postsCommand handles post reading, writing and export
func postsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "posts",
		Aliases: []string{"p"},
		Usage:   "Browse and manage posts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List posts, optionally filtered by keyword and category",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Search titles and content",
					},
					&cli.IntFlag{
						Name:  "category",
						Usage: "Category id",
					},
					&cli.BoolFlag{
						Name:  "home",
						Usage: "Show only the latest posts, as on the home page",
					},
				}, jsonFlags()...),
				Action: r.PostsList,
			},
			{
				Name:      "show",
				Usage:     "Show a post and its comments",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.PostsShow,
			},
			{
				Name:  "new",
				Usage: "Create a post",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Post title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "content",
						Usage: "Post content (markdown)",
					},
					&cli.StringFlag{
						Name:  "content-file",
						Usage: "Read the content from a file",
					},
					&cli.IntFlag{
						Name:     "category",
						Usage:    "Category id",
						Required: true,
					},
				},
				Action: r.PostsNew,
			},
			{
				Name:      "edit",
				Usage:     "Edit one of your posts",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "New title",
					},
					&cli.StringFlag{
						Name:  "content",
						Usage: "New content",
					},
					&cli.StringFlag{
						Name:  "content-file",
						Usage: "Read the new content from a file",
					},
					&cli.IntFlag{
						Name:  "category",
						Usage: "New category id",
					},
				},
				Action: r.PostsEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete one of your posts",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.PostsDelete,
			},
			{
				Name:  "export",
				Usage: "Export posts with their comments to files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Post id to export (repeatable); all matching posts when omitted",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: bbx_export_{epoch})",
					},
					&cli.StringFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Export only posts matching keyword",
					},
					&cli.IntFlag{
						Name:  "category",
						Usage: "Export only posts in this category",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Post fetches per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "avatars",
						Usage: "Download author avatars for markdown exports",
					},
				},
				Action: r.PostsExport,
			},
			{
				Name:  "exports",
				Usage: "Show recent export runs",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
				}, jsonFlags()...),
				Action: r.PostsExports,
			},
		},
	}
}

// commentsCommand handles comment operations
func commentsCommand(r *Runner) *cli.Command {
	postFlag := &cli.IntFlag{
		Name:     "post",
		Usage:    "Post id the comment belongs to",
		Required: true,
	}

	return &cli.Command{
		Name:  "comments",
		Usage: "Write and manage comments",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Comment on a post",
				Arguments: []cli.Argument{&cli.StringArg{Name: "post"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "content",
						Aliases:  []string{"m"},
						Usage:    "Comment text",
						Required: true,
					},
				},
				Action: r.CommentsAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit one of your comments",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					postFlag,
					&cli.StringFlag{
						Name:     "content",
						Aliases:  []string{"m"},
						Usage:    "New comment text",
						Required: true,
					},
				},
				Action: r.CommentsEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete one of your comments",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{postFlag, yesFlag()},
				Action:    r.CommentsDelete,
			},
		},
	}
}

// categoriesCommand handles category lookups
func categoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"cat"},
		Usage:   "Board categories",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List categories",
				Flags:  jsonFlags(),
				Action: r.CategoriesList,
			},
			{
				Name:      "show",
				Usage:     "Show a category and its posts",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.CategoriesShow,
			},
		},
	}
}

// usersCommand handles user profiles
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "User profiles",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a user profile (yours when no id is given)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.UsersShow,
			},
			{
				Name:  "update",
				Usage: "Update your nickname or profile image",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "nickname",
						Usage: "New nickname",
					},
					&cli.StringFlag{
						Name:  "profile-image",
						Usage: "New profile image URL",
					},
				},
				Action: r.UsersUpdate,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the board backend",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a backend path and print the response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags:     jsonFlags(),
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body, or a multipart form with --field/--file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
					&cli.StringSliceFlag{
						Name:  "field",
						Usage: "Multipart form field as name=value (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "Multipart file as name=path (repeatable)",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Browse the board in an interactive terminal UI",
		Arguments: []cli.Argument{&cli.StringArg{Name: "path", Value: "/"}},
		Action:    r.TUI,
	}
}
