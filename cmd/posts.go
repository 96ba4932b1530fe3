package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/bbx/internal/formatter"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/desertthunder/bbx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const pageWidth = 80

// PostsList prints the post list, or the home page's latest posts with --home.
func (r *Runner) PostsList(ctx context.Context, cmd *cli.Command) error {
	filter := models.PostFilter{
		Keyword:    cmd.String("keyword"),
		CategoryID: cmd.Int("category"),
	}

	list, title := pages.NewPostList(), "Posts"
	if cmd.Bool("home") {
		list, title = pages.NewHomeList(), "Home"
	}

	if categories, err := r.client.ListCategories(ctx); err != nil {
		r.logger.Warn("failed to load categories", "error", err)
	} else {
		list.SetCategories(categories)
	}

	if err := list.Load(ctx, r.client, filter); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list.Posts(), cmd.Bool("pretty"))
	}
	return r.writePage(title, list.Render())
}

// PostsShow prints a post with its comments.
func (r *Runner) PostsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	detail := pages.NewPostDetail(id, r.client, r.shell, r)
	if err := detail.Load(ctx); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.PostExport{Post: *detail.Post(), Comments: detail.Comments()}, cmd.Bool("pretty"))
	}
	return r.writePage(fmt.Sprintf("Post #%d", id), detail.Render(pageWidth))
}

// PostsNew creates a post. Signed-out users are stopped before anything is sent.
func (r *Runner) PostsNew(ctx context.Context, cmd *cli.Command) error {
	route, err := pages.Open("/posts/new", r.shell)
	if err != nil {
		return err
	}
	if route.Kind == pages.RouteLoginRequired {
		return r.shell.RequireAuth()
	}

	content, err := readContent(cmd)
	if err != nil {
		return err
	}

	form := pages.NewCreateForm(r.client, r.shell)
	form.Input = models.PostInput{
		Title:      cmd.String("title"),
		Content:    content,
		CategoryID: cmd.Int("category"),
	}

	post, err := form.Submit(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("post created", "post_id", post.ID)
	return r.writePlain("✓ Created post #%d: %s\n", post.ID, pages.PlainText(post.Title))
}

// PostsEdit updates the fields given on the command line and keeps the rest.
func (r *Runner) PostsEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	route, err := pages.Open(fmt.Sprintf("/posts/%d/edit", id), r.shell)
	if err != nil {
		return err
	}
	if route.Kind == pages.RouteLoginRequired {
		return r.shell.RequireAuth()
	}

	form := pages.NewEditForm(id, r.client, r.shell)
	if err := form.Load(ctx); err != nil {
		return err
	}

	if cmd.IsSet("title") {
		form.Input.Title = cmd.String("title")
	}
	if cmd.IsSet("content") || cmd.IsSet("content-file") {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		form.Input.Content = content
	}
	if cmd.IsSet("category") {
		form.Input.CategoryID = cmd.Int("category")
	}

	post, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated post #%d: %s\n", post.ID, pages.PlainText(post.Title))
}

// PostsDelete deletes a post after confirmation.
func (r *Runner) PostsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.shell.RequireAuth(); err != nil {
		return err
	}

	detail := pages.NewPostDetail(id, r.client, r.shell, r.confirmer(cmd))
	if err := detail.Load(ctx); err != nil {
		return err
	}

	deleted, err := detail.DeletePost(ctx)
	if err != nil {
		return err
	}
	if !deleted {
		return r.writePlain("Cancelled\n")
	}
	return r.writePlain("✓ Deleted post #%d\n", id)
}

// PostsExport exports posts with their comments using the worker pool.
func (r *Runner) PostsExport(ctx context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.StringSlice("id"))
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Filter: models.PostFilter{
			Keyword:    cmd.String("keyword"),
			CategoryID: cmd.Int("category"),
		},
	}
	if cmd.Bool("avatars") {
		opts.FetchAvatar = func(ctx context.Context, url string) ([]byte, error) {
			return formatter.DownloadImage(ctx, r.httpClient, url)
		}
	}

	var recorder tasks.RunRecorder
	if r.runs != nil {
		recorder = r.runs
	}
	logger := shared.WithLogger(r.logger, "command", "posts export")
	engine := tasks.NewExportEngine(r.client, recorder, logger)

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, ids, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d/%d posts to %s\n", result.SuccessfulExports, result.TotalPosts, result.OutputDirectory)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ #%d %s: %v\n", res.PostID, res.Title, res.Error)
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}

// PostsExports lists recent export runs from the local history.
func (r *Runner) PostsExports(ctx context.Context, cmd *cli.Command) error {
	if r.runs == nil {
		return fmt.Errorf("%w: export history needs the local database", shared.ErrServiceUnavailable)
	}

	runs, err := r.runs.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}
	if len(runs) == 0 {
		return r.writePlain("No exports yet.\n")
	}

	for _, run := range runs {
		status := "running"
		if run.FinishedAt != nil {
			status = fmt.Sprintf("%d ok, %d failed", run.Succeeded, run.Failed)
		}
		r.writePlain("%s  %-8s %3d posts  %s  %s\n",
			shared.FormatTime(run.StartedAt), run.Format, run.Total, status, run.OutputDir)
	}
	return nil
}

// readContent takes the post body from --content or --content-file.
func readContent(cmd *cli.Command) (string, error) {
	content, path := cmd.String("content"), cmd.String("content-file")
	if content != "" && path != "" {
		return "", fmt.Errorf("%w: cannot specify both --content and --content-file", shared.ErrInvalidArgument)
	}
	if path == "" {
		return content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read content file: %w", err)
	}
	return string(data), nil
}

func parseIDs(raw []string) ([]int, error) {
	var ids []int
	for _, value := range raw {
		for part := range strings.SplitSeq(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("%w: invalid post id %q", shared.ErrInvalidArgument, part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
