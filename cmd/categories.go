package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/urfave/cli/v3"
)

// CategoriesList prints the board categories.
func (r *Runner) CategoriesList(ctx context.Context, cmd *cli.Command) error {
	categories, err := r.client.ListCategories(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, cmd.Bool("pretty"))
	}

	var b strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&b, "%3d  %s (%s)\n", c.ID, c.Name(), c.Status)
	}
	if len(categories) == 0 {
		b.WriteString("No categories.\n")
	}
	return r.writePage("Categories", b.String())
}

// CategoriesShow prints one category with the posts filed under it.
func (r *Runner) CategoriesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	category, err := r.client.GetCategory(ctx, id)
	if err != nil {
		return err
	}

	list := pages.NewPostList()
	list.SetCategories([]models.Category{*category})
	if err := list.Load(ctx, r.client, models.PostFilter{CategoryID: id}); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Category *models.Category `json:"category"`
			Posts    []models.Post    `json:"posts"`
		}{category, list.Posts()}, cmd.Bool("pretty"))
	}
	return r.writePage(category.Name(), list.Render())
}
